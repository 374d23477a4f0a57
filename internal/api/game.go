package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/snakeguard/snakeguard/internal/app/orchestrator"
	"github.com/snakeguard/snakeguard/internal/domain"
	"github.com/snakeguard/snakeguard/internal/infra/movecodec"
)

// gameStartRequest is the game/start wire request.
type gameStartRequest struct {
	Fingerprint string `json:"fingerprint"`
}

type gameStartResponse struct {
	Success bool `json:"success"`
	Seed uint32 `json:"seed"`
}

func (s *Server) handleGameStart(w http.ResponseWriter, r *http.Request) {
	var req gameStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Fingerprint == "" {
		writeError(w, http.StatusUnauthorized, "missing fingerprint")
		return
	}

	playerID := playerIDFrom(r)
	seed := s.pipeline.StartGame(r.Context(), playerID)
	writeJSON(w, http.StatusOK, gameStartResponse{Success: true, Seed: seed})
}

// scoreRequest is the score wire request; Moves and Heartbeats are the
// semicolon-delimited compact move and heartbeat encodings.
type scoreRequest struct {
	Score int `json:"score"`
	SpeedLevel int `json:"speedLevel"`
	Fingerprint string `json:"fingerprint"`
	GameDuration float64 `json:"gameDuration"`
	FoodEaten int `json:"foodEaten"`
	Seed uint32 `json:"seed"`
	Moves string `json:"moves"`
	TotalFrames uint64 `json:"totalFrames"`
	Heartbeats string `json:"heartbeats"`
}

type scoreResponse struct {
	Success bool `json:"success"`
	BestScore int `json:"bestScore"`
	Rank int `json:"rank"`
	IsNewBest bool `json:"isNewBest"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Fingerprint == "" {
		writeError(w, http.StatusUnauthorized, "missing fingerprint")
		return
	}

	moves, err := movecodec.DecodeMoves(req.Moves)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	heartbeats, err := movecodec.DecodeHeartbeats(req.Heartbeats)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := domain.Submission{
		PlayerID: playerIDFrom(r),
		Score: req.Score,
		SpeedLevel: req.SpeedLevel,
		FoodEaten: req.FoodEaten,
		GameDuration: req.GameDuration,
		Seed: req.Seed,
		Moves: moves,
		Heartbeats: heartbeats,
		TotalFrames: req.TotalFrames,
		Fingerprint: req.Fingerprint,
	}

	result, err := s.pipeline.Submit(r.Context(), sub)
	if err != nil {
		s.publishVerdict(sub, false, err)
		writeSubmissionError(w, err)
		return
	}

	s.publishVerdict(sub, true, nil)
	writeJSON(w, http.StatusOK, scoreResponse{
		Success: true,
		BestScore: result.BestScore,
		Rank: result.Rank,
		IsNewBest: result.IsNewBest,
	})
}

// publishVerdict fans the accept/reject decision out to /game/live
// subscribers. Never blocks the response: liveHub.publish drops the event
// for any subscriber whose buffer is full instead of waiting.
func (s *Server) publishVerdict(sub domain.Submission, accepted bool, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	s.live.publish(liveEvent{
		PlayerID: sub.PlayerID,
		Score: sub.Score,
		Accepted: accepted,
		Reason: reason,
		Timestamp: time.Now(),
	})
}

// writeSubmissionError maps a pipeline rejection to the HTTP status and
// machine-readable error body appropriate to its kind.
func writeSubmissionError(w http.ResponseWriter, err error) {
	subErr, ok := err.(*orchestrator.SubmissionError)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch subErr.Kind {
	case orchestrator.KindValidation:
		writeError(w, http.StatusBadRequest, subErr.Error())
	case orchestrator.KindAuthFailure:
		writeError(w, http.StatusUnauthorized, subErr.Error())
	case orchestrator.KindRateLimited:
		writeError(w, http.StatusTooManyRequests, subErr.Error())
	case orchestrator.KindCheatDetected:
		writeError(w, http.StatusBadRequest, subErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
