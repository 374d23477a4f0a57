package training

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

type fakeSampleStore struct {
	mu sync.Mutex
	samples []domain.TrainingSample
}

func (f *fakeSampleStore) Append(_ context.Context, s domain.TrainingSample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, s)
	return nil
}

func (f *fakeSampleStore) All(_ context.Context) ([]domain.TrainingSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.TrainingSample, len(f.samples))
	copy(out, f.samples)
	return out, nil
}

func (f *fakeSampleStore) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples), nil
}

type fakeRegistry struct {
	mu sync.Mutex
	versions map[string]domain.ModelVersion
	activeID string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{versions: make(map[string]domain.ModelVersion)}
}

func (f *fakeRegistry) Save(_ context.Context, mv domain.ModelVersion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[mv.ID] = mv
	return nil
}

func (f *fakeRegistry) Activate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.versions[id]; !ok {
		return fmt.Errorf("unknown model id %q", id)
	}
	f.activeID = id
	return nil
}

func (f *fakeRegistry) Active(_ context.Context) (*domain.ModelVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeID == "" {
		return nil, nil
	}
	mv := f.versions[f.activeID]
	return &mv, nil
}

func (f *fakeRegistry) List(_ context.Context) ([]domain.ModelVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ModelVersion, 0, len(f.versions))
	for _, mv := range f.versions {
		out = append(out, mv)
	}
	return out, nil
}

func newIDSequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("model-%d", n)
	}
}

func TestWorker_TriggerTrainsAndActivatesFirstModel(t *testing.T) {
	store := &fakeSampleStore{}
	registry := newFakeRegistry()
	w := New(store, registry,
		WithMinSamples(10),
		WithSyntheticCount(15),
		WithEpochs(2),
		WithSeed(1),
		WithIDGenerator(newIDSequence()),
		WithDebounce(0),
	)

	if err := w.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}

	active, err := registry.Active(context.Background())
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if active == nil {
		t.Fatal("expected the first trained model to activate")
	}
	if active.Metrics.ValidateSamples == 0 {
		t.Fatal("expected evaluation metrics to be populated")
	}
}

func TestWorker_DebounceSkipsRapidRetrigger(t *testing.T) {
	store := &fakeSampleStore{}
	registry := newFakeRegistry()
	clock := time.Unix(1_000_000, 0)
	w := New(store, registry,
		WithMinSamples(10),
		WithSyntheticCount(10),
		WithEpochs(1),
		WithSeed(2),
		WithIDGenerator(newIDSequence()),
		WithDebounce(time.Hour),
		WithClock(func() time.Time { return clock }),
	)

	if err := w.Trigger(context.Background()); err != nil {
		t.Fatalf("first Trigger() error = %v", err)
	}
	firstCount := len(registry.versions)

	if err := w.Trigger(context.Background()); err != nil {
		t.Fatalf("second Trigger() error = %v", err)
	}
	if len(registry.versions) != firstCount {
		t.Fatalf("expected debounced Trigger to skip training, versions went from %d to %d", firstCount, len(registry.versions))
	}
}

func TestWorker_ConcurrentTriggersCoalesceIntoOneFollowUp(t *testing.T) {
	store := &fakeSampleStore{}
	registry := newFakeRegistry()
	w := New(store, registry,
		WithMinSamples(10),
		WithSyntheticCount(10),
		WithEpochs(1),
		WithSeed(3),
		WithIDGenerator(newIDSequence()),
		WithDebounce(0),
	)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Trigger(context.Background())
		}()
	}
	wg.Wait()

	if w.state.Load() != stateIdle {
		t.Fatalf("expected worker to settle back to idle, state = %d", w.state.Load())
	}
}

func TestWorker_ActivationRuleRejectsRegressingModel(t *testing.T) {
	registry := newFakeRegistry()
	_ = registry.Save(context.Background(), domain.ModelVersion{
		ID: "current",
		Metrics: domain.ModelMetrics{F1: 0.9, Accuracy: 0.9},
	})
	_ = registry.Activate(context.Background(), "current")

	w := New(&fakeSampleStore{}, registry)
	ok, err := w.shouldActivate(context.Background(), domain.ModelMetrics{F1: 0.5, Accuracy: 0.5})
	if err != nil {
		t.Fatalf("shouldActivate() error = %v", err)
	}
	if ok {
		t.Fatal("expected a model regressing F1 and accuracy by more than the allowed margin to be rejected")
	}
}

func TestWorker_ActivationRuleAllowsWithinMargin(t *testing.T) {
	registry := newFakeRegistry()
	_ = registry.Save(context.Background(), domain.ModelVersion{
		ID: "current",
		Metrics: domain.ModelMetrics{F1: 0.80, Accuracy: 0.80},
	})
	_ = registry.Activate(context.Background(), "current")

	w := New(&fakeSampleStore{}, registry)
	ok, err := w.shouldActivate(context.Background(), domain.ModelMetrics{F1: 0.79, Accuracy: 0.79})
	if err != nil {
		t.Fatalf("shouldActivate() error = %v", err)
	}
	if !ok {
		t.Fatal("expected a model within the regression margin to be allowed to activate")
	}
}

func TestComputeNormStats_ZeroVarianceFeatureYieldsZeroStd(t *testing.T) {
	samples := []domain.TrainingSample{
		{Features: domain.FeatureVector{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{Features: domain.FeatureVector{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
	}
	stats := computeNormStats(samples)
	for i, std := range stats.Stds {
		if std != 0 {
			t.Fatalf("feature %d: expected zero std for identical samples, got %v", i, std)
		}
	}
}

func TestNormalize_ZeroStdYieldsZero(t *testing.T) {
	stats := domain.NormStats{}
	fv := domain.FeatureVector{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	out := normalize(fv, stats)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("feature %d: expected zero-std normalization to yield 0, got %v", i, v)
		}
	}
}

func TestSplitTrainValidate_RespectsSplitRatio(t *testing.T) {
	samples := make([]domain.TrainingSample, 10)
	train, validate := splitTrainValidate(samples, 0.2)
	if len(validate) != 2 {
		t.Fatalf("expected 2 validation samples, got %d", len(validate))
	}
	if len(train) != 8 {
		t.Fatalf("expected 8 training samples, got %d", len(train))
	}
}

func TestSqrt_MatchesKnownSquares(t *testing.T) {
	cases := map[float64]float64{4: 2, 9: 3, 0: 0, 2: 1.4142135623730951}
	for input, want := range cases {
		got := sqrt(input)
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		if diff > 1e-9 {
			t.Fatalf("sqrt(%v) = %v, want %v", input, got, want)
		}
	}
}
