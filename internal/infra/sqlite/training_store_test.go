package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

func TestTrainingStore_AppendThenAll(t *testing.T) {
	store := NewTrainingStore(newTestDB(t))
	ctx := context.Background()

	sample := domain.TrainingSample{
		ID: "s1",
		PlayerID: "p1",
		Features: domain.FeatureVector{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		Label: domain.LabelCheat,
		Source: domain.SourceRule,
		CreatedAt: time.Now(),
	}
	if err := store.Append(ctx, sample); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 1 || all[0].Features != sample.Features || all[0].Label != domain.LabelCheat {
		t.Fatalf("All() = %+v, want one round-tripped cheat sample", all)
	}
}

func TestTrainingStore_Count(t *testing.T) {
	store := NewTrainingStore(newTestDB(t))
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		store.Append(ctx, domain.TrainingSample{ID: string(rune('a' + i)), Label: domain.LabelLegit, Source: domain.SourceSynthetic, CreatedAt: time.Now()})
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 4 {
		t.Fatalf("Count() = %d, want 4", count)
	}
}
