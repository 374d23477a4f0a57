package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/snakeguard/snakeguard/internal/app/admin"
	"github.com/snakeguard/snakeguard/internal/app/orchestrator"
	"github.com/snakeguard/snakeguard/internal/api"
	"github.com/snakeguard/snakeguard/internal/config"
	"github.com/snakeguard/snakeguard/internal/domain"
	"github.com/snakeguard/snakeguard/internal/infra/ml"
	"github.com/snakeguard/snakeguard/internal/infra/observability"
	"github.com/snakeguard/snakeguard/internal/infra/ratelimit"
	"github.com/snakeguard/snakeguard/internal/infra/registry"
	"github.com/snakeguard/snakeguard/internal/infra/scheduler"
	"github.com/snakeguard/snakeguard/internal/infra/training"
)

var enableMetrics bool

func init() {
	serveCmd.Flags().BoolVar(&enableMetrics, "metrics", true, "expose a Prometheus /metrics endpoint")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use: "serve",
	Short: "Run the HTTP submission pipeline",
	RunE: runServe,
}

// runServe owns the startup and shutdown order: persistence, then the
// model, then the registry/limiter, then the scheduler, then the HTTP
// surface — and reverses that order on shutdown.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.db.Close()

	if err := training.LoadSkillParamsFile(cfg.Training.SkillParamsFile); err != nil {
		return err
	}

	predictor := ml.NewPredictor()
	if active, err := st.registry.Active(context.Background()); err == nil && active != nil {
		predictor.Publish(*active)
	}

	sessions := registry.New(
		registry.WithTTL(config.Duration(cfg.Session.TTL, 30*time.Minute)),
		registry.WithSweepInterval(config.Duration(cfg.Session.SweepEvery, 5*time.Minute)),
	)
	limiter := ratelimit.New(
		ratelimit.WithLimit(cfg.RateLimit.Limit),
		ratelimit.WithWindow(config.Duration(cfg.RateLimit.Window, 60*time.Second)),
		ratelimit.WithGCAfter(config.Duration(cfg.RateLimit.GCAfter, time.Hour)),
		ratelimit.WithSweepEvery(config.Duration(cfg.RateLimit.SweepEvery, 10*time.Minute)),
	)

	worker := training.New(st.samples, st.registry,
		training.WithMinSamples(cfg.Training.MinSamples),
		training.WithEpochs(cfg.Training.Epochs),
		training.WithBatchSize(cfg.Training.BatchSize),
		training.WithValidateSplit(cfg.Training.ValidateSplit),
		training.WithSyntheticCount(cfg.Training.SyntheticCount),
		training.WithDebounce(config.Duration(cfg.Training.Debounce, 5*time.Minute)),
		training.WithSeed(cfg.Training.Seed),
	)
	sched := scheduler.New(st.edgeCases, worker,
		scheduler.WithPeriod(config.Duration(cfg.Scheduler.Period, 30*time.Minute)),
		scheduler.WithThreshold(cfg.Scheduler.Threshold),
		scheduler.WithCooldown(config.Duration(cfg.Scheduler.Cooldown, 2*time.Hour)),
	)

	tracer := observability.NewTracer(observability.DefaultTracerConfig())

	orch := orchestrator.New(
		limiter,
		sessions,
		st.leaderboard,
		st.cheatLog,
		st.edgeCases,
		st.samples,
		predictor,
		worker,
		orchestrator.WithTracer(tracer),
	)

	adm := admin.New(st.registry, st.samples, st.edgeCases, st.leaderboard, st.cheatLog, worker)

	requestTimeout := config.Duration(cfg.Server.RequestTimeout, 5*time.Second)
	srv := api.New(api.NewPipeline(orch), api.NewAdmin(adm), requestTimeout)
	if enableMetrics {
		srv.EnableMetrics()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go sessions.Start(ctx)
	go limiter.Start(ctx)
	go sched.Start(ctx)
	go pollActiveModel(ctx, st.registry, predictor)

	httpServer := &http.Server{
		Addr: cfg.Server.ListenAddr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "snakeguard listening on %s\n", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// pollActiveModel bridges the Training Worker's writes to the model
// registry into the live Predictor: the Worker only knows the narrow
// domain.ModelRegistry interface, so nothing pushes a newly-activated
// model into the Predictor's atomic pointer without this loop.
func pollActiveModel(ctx context.Context, reg domain.ModelRegistry, predictor *ml.Predictor) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	var lastPublished string
	if active, ok := predictor.Active(); ok {
		lastPublished = active.ID
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			active, err := reg.Active(ctx)
			if err != nil || active == nil {
				continue
			}
			if active.ID != lastPublished {
				predictor.Publish(*active)
				lastPublished = active.ID
			}
		}
	}
}
