package ml

import (
	"sync/atomic"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// Thresholds for the uncertain band used by the edge-case arbiter.
const (
	HighThreshold = 0.7
	LowThreshold = 0.3

	// minScoreForPrediction gates the predictor to submissions with a score
	// high enough to carry a meaningful behavioral signal.
	minScoreForPrediction = 50

	// uninformativeProbability is returned when no model is active, or the
	// score is below minScoreForPrediction.
	uninformativeProbability = 0.5
)

// bundle pairs one trained model's weights with its compiled network, so a
// reader never observes a network whose weights don't match its version.
type bundle struct {
	version domain.ModelVersion
	net *MLP
}

// Predictor holds the currently active model behind a single atomic
// pointer. The Training Worker is the sole writer (Publish); every
// submission handler is a concurrent reader (Predict). Swapping never
// blocks a reader mid-inference — Predict always sees either the old or
// the new bundle in full, never a half-initialized one.
type Predictor struct {
	active atomic.Pointer[bundle]
}

// NewPredictor returns a Predictor with no active model; Predict returns
// the uninformative probability until Publish is called.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Publish compiles version into a network and atomically becomes the
// active bundle for all subsequent Predict calls.
func (p *Predictor) Publish(version domain.ModelVersion) {
	hidden1, hidden2 := version.Hidden1, version.Hidden2
	if hidden1 == 0 {
		hidden1 = Hidden1
	}
	if hidden2 == 0 {
		hidden2 = Hidden2
	}
	net := NewMLP(InputSize, hidden1, hidden2, OutputSize)
	net.SetWeights(version.Weights)
	p.active.Store(&bundle{version: version, net: net})
}

// Active reports the currently published model version, if any.
func (p *Predictor) Active() (domain.ModelVersion, bool) {
	b := p.active.Load()
	if b == nil {
		return domain.ModelVersion{}, false
	}
	return b.version, true
}

// Predict returns a cheat probability in [0,1] for features, consulting
// the active model only when one is published and score is at least
// minScoreForPrediction. It never returns an error: a missing or
// broken model degrades to the uninformative probability rather than
// failing the submission — ML failures never cause a rejection.
func (p *Predictor) Predict(features domain.FeatureVector, score int) float64 {
	if score < minScoreForPrediction {
		return uninformativeProbability
	}
	b := p.active.Load()
	if b == nil {
		return uninformativeProbability
	}
	normalized := Normalize(features, b.version.Norm)
	return b.net.Forward(normalized)
}

// Normalize applies z-score normalization feature by feature using the
// model's stored per-feature mean/std. A zero std leaves the
// feature at 0 rather than dividing by zero.
func Normalize(fv domain.FeatureVector, stats domain.NormStats) []float32 {
	out := make([]float32, len(fv))
	for i, v := range fv {
		std := stats.Stds[i]
		if std == 0 {
			out[i] = 0
			continue
		}
		out[i] = float32((v - stats.Means[i]) / std)
	}
	return out
}
