package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

func TestEdgeCaseLog_AppendThenRecent(t *testing.T) {
	log := NewEdgeCaseLog(newTestDB(t))
	ctx := context.Background()

	ec := domain.EdgeCase{
		ID: "e1",
		PlayerID: "p1",
		Score: 120,
		RuleCheat: true,
		MLProbability: 0.2,
		EdgeType: domain.EdgeRulesPositiveMLNegative,
		Features: domain.FeatureVector{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		ShouldFlag: true,
		Timestamp: time.Now(),
	}
	if err := log.Append(ctx, ec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	recent, err := log.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent edge case, got %d", len(recent))
	}
	got := recent[0]
	if got.ID != ec.ID || got.EdgeType != ec.EdgeType || got.Features != ec.Features || !got.ShouldFlag {
		t.Fatalf("round-tripped edge case mismatch: got %+v, want %+v", got, ec)
	}
}

func TestEdgeCaseLog_Total(t *testing.T) {
	log := NewEdgeCaseLog(newTestDB(t))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		log.Append(ctx, domain.EdgeCase{ID: string(rune('a' + i)), Timestamp: time.Now()})
	}
	total, err := log.Total(ctx)
	if err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	if total != 3 {
		t.Fatalf("Total() = %d, want 3", total)
	}
}

func TestEdgeCaseLog_CountSinceExcludesOlderEntries(t *testing.T) {
	log := NewEdgeCaseLog(newTestDB(t))
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()
	log.Append(ctx, domain.EdgeCase{ID: "old", Timestamp: old})
	log.Append(ctx, domain.EdgeCase{ID: "new", Timestamp: recent})

	count, err := log.CountSince(ctx, time.Now().Add(-1*time.Hour).UnixMilli())
	if err != nil {
		t.Fatalf("CountSince() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("CountSince() = %d, want 1", count)
	}
}
