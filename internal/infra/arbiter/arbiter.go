// Package arbiter implements the edge-case arbiter: it classifies every
// disagreement (or uncertainty) between the rule verdict and the ML
// probability, and appends a record to the edge-case log. In shadow
// mode it never changes the accept/reject decision — that is the
// rules' call alone.
package arbiter

import (
	"context"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
	"github.com/snakeguard/snakeguard/internal/infra/ml"
)

// Classify maps a rule verdict and an ML probability onto the
// classification table. The boolean return reports whether the pair is an
// edge case at all — "agreement" cells are not.
func Classify(ruleCheat bool, mlProbability float64) (domain.EdgeType, bool) {
	switch {
	case ruleCheat && mlProbability < ml.LowThreshold:
		return domain.EdgeRulesPositiveMLNegative, true
	case ruleCheat && mlProbability > ml.HighThreshold:
		return "", false // agreement, not an edge case
	case ruleCheat:
		return domain.EdgeMLUncertainRulesPositive, true
	case !ruleCheat && mlProbability > ml.HighThreshold:
		return domain.EdgeRulesNegativeMLPositive, true
	case !ruleCheat && mlProbability < ml.LowThreshold:
		return "", false // agreement, not an edge case
	default:
		return domain.EdgeMLUncertainRulesNegative, true
	}
}

// ShouldFlag reports whether an edge type raises a human-review flag:
// the two types where the ML model disagrees toward "more suspicious
// than the rules concluded".
func ShouldFlag(edgeType domain.EdgeType) bool {
	return edgeType == domain.EdgeRulesNegativeMLPositive || edgeType == domain.EdgeMLUncertainRulesNegative
}

// Arbitrate runs Classify against a submission's rule verdict and ML
// probability and, if it is an edge case, appends it to log. It never
// returns an error that should affect the submission's accept/reject
// decision — logging failures are the caller's concern to surface as an
// InternalError at the persistence boundary, not to feed back into the
// verdict.
func Arbitrate(ctx context.Context, log domain.EdgeCaseLog, playerID string, score int, verdict domain.RuleVerdict, mlProbability float64, features domain.FeatureVector, newID func() string, now func() time.Time) (domain.EdgeCase, bool, error) {
	edgeType, isEdge := Classify(verdict.Cheat, mlProbability)
	if !isEdge {
		return domain.EdgeCase{}, false, nil
	}

	ec := domain.EdgeCase{
		ID: newID(),
		PlayerID: playerID,
		Score: score,
		RuleCheat: verdict.Cheat,
		MLProbability: mlProbability,
		EdgeType: edgeType,
		Features: features,
		ShouldFlag: ShouldFlag(edgeType),
		Timestamp: now(),
	}

	if err := log.Append(ctx, ec); err != nil {
		return ec, true, err
	}
	return ec, true, nil
}
