package orchestrator

import "github.com/snakeguard/snakeguard/internal/domain"

// Submission field bounds.
const (
	maxScore = 10_000
	maxTotalFrames = 10_000
)

// validate checks the scalar submission fields treated as malformed
// input rather than a cheat signal — these never produce a cheat record,
// only a 4xx.
func validate(sub domain.Submission) error {
	switch {
	case sub.Score < 0 || sub.Score > maxScore:
		return domain.ErrInvalidScore
	case sub.FoodEaten < 0:
		return domain.ErrInvalidFoodEaten
	case sub.GameDuration < 0:
		return domain.ErrInvalidDuration
	case sub.TotalFrames > maxTotalFrames:
		return domain.ErrInvalidTotalFrames
	case sub.Fingerprint == "":
		return domain.ErrMissingFingerprint
	default:
		return nil
	}
}
