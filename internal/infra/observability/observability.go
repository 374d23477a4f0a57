// Package observability provides the submission pipeline's tracing and
// Prometheus metrics: one span per Submit call recording how long the
// pipeline took and whether it ended in an error, plus counters and
// histograms for rule fires, ML predictions, training runs, and
// scheduler ticks.
//
// The pipeline runs entirely in one process and a submission is never
// itself part of an inbound distributed trace, so the span model here
// is flatter than a general-purpose tracer: no parent/child span tree,
// no server/client span kinds, no cross-process context propagation.
// Spans are kept in an in-memory ring buffer for inspection (ml/status
// style endpoints can read recent timings back out) rather than shipped
// to an external collector.
package observability

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SpanStatus indicates whether a submission's pipeline run succeeded.
type SpanStatus int

const (
	SpanOK SpanStatus = iota
	SpanError
)

// Span records the timing of one Submit call.
type Span struct {
	TraceID string `json:"trace_id"`
	Operation string `json:"operation"`
	PlayerID string `json:"player_id,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime time.Time `json:"end_time,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Status SpanStatus `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Tracer records Span timings in-memory in a ring buffer for inspection.
type Tracer struct {
	mu sync.Mutex
	spans []Span
	maxSpans int
	enabled bool
}

// TracerConfig configures the tracer.
type TracerConfig struct {
	Enabled bool
	MaxSpans int // ring buffer size (default 10_000)
}

// DefaultTracerConfig returns production defaults.
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		Enabled: true,
		MaxSpans: 10_000,
	}
}

// NewTracer creates a new tracer.
func NewTracer(cfg TracerConfig) *Tracer {
	return &Tracer{
		spans: make([]Span, 0, cfg.MaxSpans),
		maxSpans: cfg.MaxSpans,
		enabled: cfg.Enabled,
	}
}

// StartSpan begins a span for one submission's pipeline run. Returns nil
// when the tracer is disabled, which EndSpan tolerates as a no-op.
func (t *Tracer) StartSpan(operation, playerID string) *Span {
	if !t.enabled {
		return nil
	}
	return &Span{
		TraceID: newSpanID(),
		Operation: operation,
		PlayerID: playerID,
		StartTime: time.Now(),
		Status: SpanOK,
	}
}

// EndSpan completes a span and records it. A non-nil err marks the span
// as failed and stores its message as the span's Reason.
func (t *Tracer) EndSpan(span *Span, err error) {
	if !t.enabled || span == nil {
		return
	}

	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	if err != nil {
		span.Status = SpanError
		span.Reason = err.Error()
		TraceErrors.Inc()
	}
	TracesRecorded.Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Ring buffer: overwrite oldest if at capacity.
	if len(t.spans) >= t.maxSpans {
		t.spans = t.spans[1:]
	}
	t.spans = append(t.spans, *span)
}

// Spans returns a copy of the most recent spans, at most limit of them
// (limit <= 0 means all).
func (t *Tracer) Spans(limit int) []Span {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || limit > len(t.spans) {
		limit = len(t.spans)
	}

	start := len(t.spans) - limit
	out := make([]Span, limit)
	copy(out, t.spans[start:])
	return out
}

// SpanCount returns the number of recorded spans.
func (t *Tracer) SpanCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}

// Reset clears all recorded spans.
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = t.spans[:0]
}

// newSpanID creates a short unique ID (not cryptographically secure —
// fine for tracing).
var spanCounter atomic.Int64

func newSpanID() string {
	n := spanCounter.Add(1)
	return fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), n)
}

// Prometheus metrics for the submission pipeline.

// SubmissionsTotal tracks submissions by final outcome.
var SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "submission",
	Name: "total",
	Help: "Total submissions processed, by outcome (accepted, rejected, rate_limited, validation_failed, internal_error).",
}, []string{"outcome"})

// SubmissionDuration tracks end-to-end submission processing latency.
var SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "snakeguard",
	Subsystem: "submission",
	Name: "duration_ms",
	Help: "End-to-end submission pipeline latency in milliseconds.",
	Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
})

// RateLimitRejections tracks submissions rejected by the rate limiter.
var RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "submission",
	Name: "rate_limited_total",
	Help: "Total submissions rejected by the rate limiter.",
})

// RuleFires tracks rule detector fires by cheat kind.
var RuleFires = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "rules",
	Name: "fires_total",
	Help: "Total rule detector fires, by cheat kind.",
}, []string{"kind"})

// ReplayDuration tracks how long the replay engine takes to re-simulate
// a submission.
var ReplayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "snakeguard",
	Subsystem: "replay",
	Name: "duration_ms",
	Help: "Replay engine re-simulation latency in milliseconds.",
	Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100},
})

// MLProbability tracks the distribution of predicted cheat probabilities.
var MLProbability = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "snakeguard",
	Subsystem: "ml",
	Name: "probability",
	Help: "Distribution of ML-predicted cheat probabilities.",
	Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
})

// MLModelVersion tracks which model version is currently active (as a
// changing label so dashboards can show activation events on a timeline).
var MLModelVersion = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "snakeguard",
	Subsystem: "ml",
	Name: "active_version",
	Help: "Set to 1 for the currently active model version ID.",
}, []string{"version"})

// EdgeCasesTotal tracks edge cases logged by type.
var EdgeCasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "edge_case",
	Name: "total",
	Help: "Total edge cases logged, by edge type.",
}, []string{"edge_type"})

// TrainingRunsTotal tracks training run outcomes.
var TrainingRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "training",
	Name: "runs_total",
	Help: "Total training runs, by outcome (activated, rejected, failed).",
}, []string{"outcome"})

// TrainingDuration tracks training run wall-clock duration.
var TrainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "snakeguard",
	Subsystem: "training",
	Name: "duration_seconds",
	Help: "Training run duration in seconds.",
	Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
})

// TrainingF1 tracks the F1 score of the most recently trained candidate.
var TrainingF1 = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "snakeguard",
	Subsystem: "training",
	Name: "candidate_f1",
	Help: "F1 score of the most recently evaluated training candidate.",
})

// SchedulerTicks tracks scheduler tick evaluations.
var SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "scheduler",
	Name: "ticks_total",
	Help: "Total scheduler ticks evaluated.",
})

// SchedulerTriggers tracks ticks that triggered a training run.
var SchedulerTriggers = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "scheduler",
	Name: "triggers_total",
	Help: "Total scheduler ticks that triggered a training run.",
})

// TracesRecorded tracks total spans recorded.
var TracesRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "traces",
	Name: "spans_recorded_total",
	Help: "Total trace spans recorded.",
})

// TraceErrors tracks error spans.
var TraceErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "snakeguard",
	Subsystem: "traces",
	Name: "error_spans_total",
	Help: "Total trace spans with error status.",
})
