// train.go orchestrates one end-to-end training run of the shadow ML
// model: gather samples, normalize, split, train, evaluate,
// and decide whether the new model replaces the active one. Concurrency
// is bounded by a three-state machine — at most one run executes at a
// time, and at most one more is queued behind it — a single-flight-
// plus-one-pending shape suited to background compaction-style work.
package training

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
	"github.com/snakeguard/snakeguard/internal/infra/ml"
)

// Defaults
const (
	DefaultMinSamples = 100
	DefaultEpochs = 50
	DefaultBatchSize = 32
	DefaultValidateSplit = 0.2
	DefaultSyntheticCount = 40
	MaxF1Regression = 0.02
	MaxAccuracyRegression = 0.02
	DefaultDebounce = 5 * time.Minute
)

// state values for the worker's atomic run-state machine.
const (
	stateIdle int32 = iota
	stateRunning
	stateRunningWithPending
)

// Worker runs training jobs against the configured persistence ports,
// enforcing at most one run in flight and coalescing any trigger that
// arrives mid-run into a single follow-up run.
type Worker struct {
	samples domain.TrainingStore
	registry domain.ModelRegistry

	minSamples int
	epochs int
	batchSize int
	validateSplit float64
	syntheticCount int
	debounce time.Duration

	state atomic.Int32
	lastRunAt atomic.Int64 // unix nanos, for the debounce window

	newID func() string
	now func() time.Time
	seed int64
}

// Option configures a Worker at construction.
type Option func(*Worker)

func WithMinSamples(n int) Option { return func(w *Worker) { w.minSamples = n } }
func WithEpochs(n int) Option { return func(w *Worker) { w.epochs = n } }
func WithBatchSize(n int) Option { return func(w *Worker) { w.batchSize = n } }
func WithValidateSplit(f float64) Option { return func(w *Worker) { w.validateSplit = f } }
func WithSyntheticCount(n int) Option { return func(w *Worker) { w.syntheticCount = n } }
func WithDebounce(d time.Duration) Option { return func(w *Worker) { w.debounce = d } }
func WithIDGenerator(f func() string) Option { return func(w *Worker) { w.newID = f } }
func WithClock(now func() time.Time) Option { return func(w *Worker) { w.now = now } }
func WithSeed(seed int64) Option { return func(w *Worker) { w.seed = seed } }

// New builds a Worker with the defaults above, applying any Options.
func New(samples domain.TrainingStore, registry domain.ModelRegistry, opts ...Option) *Worker {
	w := &Worker{
		samples: samples,
		registry: registry,
		minSamples: DefaultMinSamples,
		epochs: DefaultEpochs,
		batchSize: DefaultBatchSize,
		validateSplit: DefaultValidateSplit,
		syntheticCount: DefaultSyntheticCount,
		debounce: DefaultDebounce,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Trigger requests a training run. When the worker is idle, the run
// happens synchronously on the calling goroutine and Trigger returns its
// error. If a run is already in flight, it arranges for exactly one more
// run to follow once the current one finishes rather than stacking
// additional runs, and returns nil at once. A call within the debounce
// window after the last run is a no-op.
func (w *Worker) Trigger(ctx context.Context) error {
	if since := w.now().Sub(time.Unix(0, w.lastRunAt.Load())); w.lastRunAt.Load() != 0 && since < w.debounce {
		return nil
	}

	for {
		switch w.state.Load() {
		case stateIdle:
			if w.state.CompareAndSwap(stateIdle, stateRunning) {
				return w.runLoop(ctx)
			}
		case stateRunning:
			if w.state.CompareAndSwap(stateRunning, stateRunningWithPending) {
				return nil
			}
		default: // stateRunningWithPending: a follow-up is already queued
			return nil
		}
	}
}

// runLoop executes one training run, then checks whether another was
// queued while it ran; if so it runs again before going idle.
func (w *Worker) runLoop(ctx context.Context) error {
	for {
		err := w.runOnce(ctx)
		w.lastRunAt.Store(w.now().UnixNano())
		if err != nil {
			w.state.Store(stateIdle)
			return err
		}

		if w.state.CompareAndSwap(stateRunning, stateIdle) {
			return nil
		}
		// A Trigger arrived mid-run and bumped us to
		// stateRunningWithPending; run once more before idling.
		w.state.Store(stateRunning)
	}
}

// runOnce performs a single gather -> train -> evaluate -> activate pass.
func (w *Worker) runOnce(ctx context.Context) error {
	stored, err := w.samples.All(ctx)
	if err != nil {
		return fmt.Errorf("training: load samples: %w", err)
	}

	all := make([]domain.TrainingSample, len(stored))
	copy(all, stored)
	if len(all) < w.minSamples {
		all = append(all, w.syntheticSamples()...)
	}
	if len(all) < 2 {
		return fmt.Errorf("training: not enough samples to train (%d)", len(all))
	}

	rng := rand.New(rand.NewSource(w.seed))
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	norm := computeNormStats(all)
	trainSet, valSet := splitTrainValidate(all, w.validateSplit)

	net := newNetwork(ml.InputSize, ml.Hidden1, ml.Hidden2, ml.OutputSize, rng)
	metrics := w.trainAndEvaluate(net, trainSet, valSet, norm)

	candidate := domain.ModelVersion{
		CreatedAt: w.now(),
		Weights: net.exportWeights(),
		Norm: norm,
		Metrics: metrics,
		Hidden1: ml.Hidden1,
		Hidden2: ml.Hidden2,
	}
	if w.newID != nil {
		candidate.ID = w.newID()
	}

	if err := w.registry.Save(ctx, candidate); err != nil {
		return fmt.Errorf("training: save model: %w", err)
	}

	activate, err := w.shouldActivate(ctx, metrics)
	if err != nil {
		return fmt.Errorf("training: check activation: %w", err)
	}
	if activate {
		if err := w.registry.Activate(ctx, candidate.ID); err != nil {
			return fmt.Errorf("training: activate model: %w", err)
		}
	}
	return nil
}

func (w *Worker) syntheticSamples() []domain.TrainingSample {
	var out []domain.TrainingSample
	for i, a := range CheatArchetypes {
		out = append(out, GenerateSynthetic(a, w.syntheticCount, w.seed+int64(i)+1)...)
	}
	for i, a := range SkillArchetypes {
		out = append(out, GenerateSynthetic(a, w.syntheticCount, w.seed+int64(len(CheatArchetypes)+i)+1)...)
	}
	return out
}

// shouldActivate implements the activation rule: the first
// trained model always activates; afterward a candidate only activates
// if it does not regress F1 or accuracy by more than the allowed margin
// against the currently active model.
func (w *Worker) shouldActivate(ctx context.Context, candidate domain.ModelMetrics) (bool, error) {
	active, err := w.registry.Active(ctx)
	if err != nil {
		return false, err
	}
	if active == nil {
		return true, nil
	}
	if candidate.F1 < active.Metrics.F1-MaxF1Regression {
		return false, nil
	}
	if candidate.Accuracy < active.Metrics.Accuracy-MaxAccuracyRegression {
		return false, nil
	}
	return true, nil
}

func splitTrainValidate(samples []domain.TrainingSample, validateSplit float64) (train, validate []domain.TrainingSample) {
	n := len(samples)
	valCount := int(float64(n) * validateSplit)
	if valCount == 0 && n > 1 {
		valCount = 1
	}
	return samples[valCount:], samples[:valCount]
}

func computeNormStats(samples []domain.TrainingSample) domain.NormStats {
	var stats domain.NormStats
	if len(samples) == 0 {
		return stats
	}
	n := float64(len(samples))
	for _, s := range samples {
		for i, v := range s.Features {
			stats.Means[i] += v
		}
	}
	for i := range stats.Means {
		stats.Means[i] /= n
	}
	for _, s := range samples {
		for i, v := range s.Features {
			d := v - stats.Means[i]
			stats.Stds[i] += d * d
		}
	}
	for i := range stats.Stds {
		variance := stats.Stds[i] / n
		stats.Stds[i] = sqrt(variance)
	}
	return stats
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	// Newton's method from z = x for a fixed 20 iterations; precision
	// beyond that is not meaningful for z-scores.
	z := x
	for i := 0; i < 20; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

func normalize(fv domain.FeatureVector, stats domain.NormStats) []float32 {
	out := make([]float32, len(fv))
	for i, v := range fv {
		if stats.Stds[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = float32((v - stats.Means[i]) / stats.Stds[i])
	}
	return out
}

func labelValue(l domain.SampleLabel) float32 {
	if l == domain.LabelCheat {
		return 1
	}
	return 0
}

// trainAndEvaluate runs w.epochs passes of mini-batch Adam training over
// train, then scores the resulting net against validate.
func (w *Worker) trainAndEvaluate(net *network, train, validate []domain.TrainingSample, norm domain.NormStats) domain.ModelMetrics {
	rng := rand.New(rand.NewSource(w.seed + 1))
	size := genomeSize(net.inputSize, net.hidden1, net.hidden2, net.outputSize)

	for epoch := 0; epoch < w.epochs; epoch++ {
		rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
		for start := 0; start < len(train); start += w.batchSize {
			end := start + w.batchSize
			if end > len(train) {
				end = len(train)
			}
			batch := train[start:end]
			if len(batch) == 0 {
				continue
			}
			grad := make([]float32, size)
			for _, s := range batch {
				input := normalize(s.Features, norm)
				cache := net.forward(input)
				net.backward(cache, labelValue(s.Label), grad)
			}
			for i := range grad {
				grad[i] /= float32(len(batch))
			}
			net.applyGradient(grad)
		}
	}

	metrics := evaluate(net, validate, norm)
	metrics.TrainSamples = len(train)
	metrics.Epochs = w.epochs
	return metrics
}

func evaluate(net *network, validate []domain.TrainingSample, norm domain.NormStats) domain.ModelMetrics {
	var truePos, trueNeg, falsePos, falseNeg int
	for _, s := range validate {
		input := normalize(s.Features, norm)
		prob := net.forward(input).out
		predictedCheat := prob >= 0.5
		actualCheat := s.Label == domain.LabelCheat

		switch {
		case predictedCheat && actualCheat:
			truePos++
		case !predictedCheat && !actualCheat:
			trueNeg++
		case predictedCheat && !actualCheat:
			falsePos++
		default:
			falseNeg++
		}
	}

	total := truePos + trueNeg + falsePos + falseNeg
	metrics := domain.ModelMetrics{
		TrainSamples: 0,
		ValidateSamples: len(validate),
	}
	if total > 0 {
		metrics.Accuracy = float64(truePos+trueNeg) / float64(total)
	}
	if truePos+falsePos > 0 {
		metrics.Precision = float64(truePos) / float64(truePos+falsePos)
	}
	if truePos+falseNeg > 0 {
		metrics.Recall = float64(truePos) / float64(truePos+falseNeg)
	}
	if metrics.Precision+metrics.Recall > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
	}
	return metrics
}
