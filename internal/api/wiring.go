package api

import (
	"context"
	"time"

	"github.com/snakeguard/snakeguard/internal/app/admin"
	"github.com/snakeguard/snakeguard/internal/app/orchestrator"
	"github.com/snakeguard/snakeguard/internal/domain"
)

// pipelineAdapter lets *orchestrator.Orchestrator satisfy Pipeline without
// this package importing orchestrator.Result as its own return type, so a
// change to the orchestrator's internal Result shape can't silently change
// the wire response shape.
type pipelineAdapter struct {
	orch *orchestrator.Orchestrator
}

// NewPipeline adapts an *orchestrator.Orchestrator to the Pipeline interface.
func NewPipeline(orch *orchestrator.Orchestrator) Pipeline {
	return &pipelineAdapter{orch: orch}
}

func (a *pipelineAdapter) StartGame(ctx context.Context, playerID string) uint32 {
	return a.orch.StartGame(ctx, playerID)
}

func (a *pipelineAdapter) Submit(ctx context.Context, sub domain.Submission) (PipelineResult, error) {
	result, err := a.orch.Submit(ctx, sub)
	return PipelineResult{BestScore: result.BestScore, Rank: result.Rank, IsNewBest: result.IsNewBest}, err
}

var _ Pipeline = (*pipelineAdapter)(nil)

// adminAdapter lets *admin.Admin satisfy Admin, translating its internal
// Status/TrainingLogEntry shapes into this package's JSON-tagged wire
// types.
type adminAdapter struct {
	admin *admin.Admin
}

// NewAdmin adapts an *admin.Admin to the Admin interface.
func NewAdmin(a *admin.Admin) Admin {
	return &adminAdapter{admin: a}
}

func (a *adminAdapter) Status(ctx context.Context) (AdminStatus, error) {
	s, err := a.admin.Status(ctx)
	if err != nil {
		return AdminStatus{}, err
	}
	return AdminStatus{
		ActiveModelID: s.ActiveModelID,
		HasModel: s.HasModel,
		TotalSamples: s.TotalSamples,
		EdgeCaseCount: s.EdgeCaseCount,
		Metrics: s.Metrics,
	}, nil
}

func (a *adminAdapter) Versions(ctx context.Context) ([]domain.ModelVersion, error) {
	return a.admin.Versions(ctx)
}

func (a *adminAdapter) TrainingLogs(ctx context.Context, limit int) ([]TrainingLogEntry, error) {
	logs, err := a.admin.TrainingLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]TrainingLogEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, TrainingLogEntry{
			ModelID: l.ModelID,
			CreatedAt: time.Unix(l.CreatedAt, 0),
			Activated: l.Activated,
			Metrics: l.Metrics,
		})
	}
	return out, nil
}

func (a *adminAdapter) EdgeCases(ctx context.Context, limit int) ([]domain.EdgeCase, error) {
	return a.admin.EdgeCases(ctx, limit)
}

func (a *adminAdapter) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return a.admin.Leaderboard(ctx, limit)
}

func (a *adminAdapter) CheatLog(ctx context.Context, limit int) ([]domain.CheatRecord, error) {
	return a.admin.CheatLog(ctx, limit)
}

func (a *adminAdapter) Train(ctx context.Context) error {
	return a.admin.Train(ctx)
}

var _ Admin = (*adminAdapter)(nil)
