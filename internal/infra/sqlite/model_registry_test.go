package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

func TestModelRegistry_SaveThenList(t *testing.T) {
	reg := NewModelRegistry(newTestDB(t))
	ctx := context.Background()

	mv := domain.ModelVersion{
		ID: "m1",
		CreatedAt: time.Now(),
		Weights: []float32{0.1, 0.2, 0.3},
		Norm: domain.NormStats{},
		Metrics: domain.ModelMetrics{Accuracy: 0.9, F1: 0.85},
		Hidden1: 32,
		Hidden2: 16,
	}
	if err := reg.Save(ctx, mv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	list, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || len(list[0].Weights) != 3 || list[0].Active {
		t.Fatalf("List() = %+v, want one inactive model with 3 weights", list)
	}
}

func TestModelRegistry_ActivateMakesModelActive(t *testing.T) {
	reg := NewModelRegistry(newTestDB(t))
	ctx := context.Background()
	reg.Save(ctx, domain.ModelVersion{ID: "m1", CreatedAt: time.Now(), Weights: []float32{1}})

	if err := reg.Activate(ctx, "m1"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	active, err := reg.Active(ctx)
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if active == nil || active.ID != "m1" || !active.Active {
		t.Fatalf("Active() = %+v, want m1 active", active)
	}
}

func TestModelRegistry_ActivateSwapsOutThePreviousActiveModel(t *testing.T) {
	reg := NewModelRegistry(newTestDB(t))
	ctx := context.Background()
	reg.Save(ctx, domain.ModelVersion{ID: "m1", CreatedAt: time.Now(), Weights: []float32{1}})
	reg.Save(ctx, domain.ModelVersion{ID: "m2", CreatedAt: time.Now(), Weights: []float32{2}})
	reg.Activate(ctx, "m1")

	if err := reg.Activate(ctx, "m2"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	active, err := reg.Active(ctx)
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if active == nil || active.ID != "m2" {
		t.Fatalf("expected m2 to be the sole active model, got %+v", active)
	}
}

func TestModelRegistry_ActiveReturnsNilWhenNoneActivated(t *testing.T) {
	reg := NewModelRegistry(newTestDB(t))
	active, err := reg.Active(context.Background())
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if active != nil {
		t.Fatalf("expected nil active model before any activation, got %+v", active)
	}
}
