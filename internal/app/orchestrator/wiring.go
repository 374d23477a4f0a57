package orchestrator

import (
	"github.com/snakeguard/snakeguard/internal/infra/ml"
	"github.com/snakeguard/snakeguard/internal/infra/ratelimit"
	"github.com/snakeguard/snakeguard/internal/infra/registry"
	"github.com/snakeguard/snakeguard/internal/infra/training"
)

// Compile-time checks that the concrete infrastructure types this package
// is actually wired to in the composition root satisfy the narrow
// interfaces above, so a signature drift in any of them fails the build
// here rather than surfacing as a confusing wiring error in cmd/snakeguard.
var (
	_ RateLimiter = (*ratelimit.Limiter)(nil)
	_ SessionStore = (*registry.Registry)(nil)
	_ Predictor = (*ml.Predictor)(nil)
	_ Trainer = (*training.Worker)(nil)
)
