// Package api exposes the submission pipeline over HTTP: game/start, score,
// the hall of fame / hall of shame leaderboards, and an administrative
// surface over the training worker and model registry. Uses a
// chi-router composition: one Handler() method building a chi.Mux,
// route groups per surface, a shared writeJSON/writeError pair.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// Pipeline is the narrow submission-handling surface the API needs from the
// orchestrator, kept as its own interface (rather than importing
// orchestrator.Orchestrator's concrete type) so this package stays
// testable with a fake and the orchestrator package never needs to know
// about HTTP.
type Pipeline interface {
	StartGame(ctx context.Context, playerID string) uint32
	Submit(ctx context.Context, sub domain.Submission) (PipelineResult, error)
}

// PipelineResult mirrors orchestrator.Result without requiring this
// package to import the orchestrator package's concrete type.
type PipelineResult struct {
	BestScore int
	Rank int
	IsNewBest bool
}

// Admin is the administrative surface backing the ml/* endpoints.
type Admin interface {
	Status(ctx context.Context) (AdminStatus, error)
	Versions(ctx context.Context) ([]domain.ModelVersion, error)
	TrainingLogs(ctx context.Context, limit int) ([]TrainingLogEntry, error)
	EdgeCases(ctx context.Context, limit int) ([]domain.EdgeCase, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	CheatLog(ctx context.Context, limit int) ([]domain.CheatRecord, error)
	Train(ctx context.Context) error
}

// AdminStatus is the ml/status response payload.
type AdminStatus struct {
	ActiveModelID string `json:"activeModelId"`
	HasModel bool `json:"hasModel"`
	TotalSamples int `json:"totalSamples"`
	EdgeCaseCount int `json:"edgeCaseCount"`
	Metrics domain.ModelMetrics `json:"metrics"`
}

// TrainingLogEntry is one row of the ml/training-logs response.
type TrainingLogEntry struct {
	ModelID string `json:"modelId"`
	CreatedAt time.Time `json:"createdAt"`
	Activated bool `json:"activated"`
	Metrics domain.ModelMetrics `json:"metrics"`
}

// Server is the snakeguard HTTP API server.
type Server struct {
	pipeline Pipeline
	admin Admin
	metricsEnabled bool
	requestTimeout time.Duration
	live *liveHub
}

// New builds a Server from its collaborators.
func New(pipeline Pipeline, admin Admin, requestTimeout time.Duration) *Server {
	return &Server{pipeline: pipeline, admin: admin, requestTimeout: requestTimeout, live: newLiveHub()}
}

// EnableMetrics turns on the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// /game/live is a long-lived websocket feed for dashboards, not a
	// player-facing endpoint: it gets neither the request timeout (which
	// would sever the connection on a clock, not a client disconnect) nor
	// the player-identity check (there is no submitting player to
	// identify).
	r.Get("/game/live", s.handleGameLive)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout))
		r.Use(playerIdentity)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/game", func(r chi.Router) {
			r.Post("/start", s.handleGameStart)
		})
		r.Post("/score", s.handleScore)

		r.Get("/halloffame", s.handleLeaderboard)
		r.Get("/hallofshame", s.handleCheatLog)

		r.Route("/ml", func(r chi.Router) {
			r.Get("/status", s.handleMLStatus)
			r.Get("/versions", s.handleMLVersions)
			r.Get("/training-logs", s.handleMLTrainingLogs)
			r.Get("/edge-cases", s.handleMLEdgeCases)
			r.Post("/train", s.handleMLTrain)
		})

		if s.metricsEnabled {
			r.Handle("/metrics", promhttp.Handler())
		}
	})

	return r
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the short machine-readable error string a rejection requires;
// the detailed replay diagnostics never leave the server.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
