package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/snakeguard/snakeguard/internal/infra/training"
)

func init() {
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use: "train",
	Short: "Force a single training run against the current sample store",
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
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

	worker := training.New(st.samples, st.registry,
		training.WithMinSamples(cfg.Training.MinSamples),
		training.WithEpochs(cfg.Training.Epochs),
		training.WithBatchSize(cfg.Training.BatchSize),
		training.WithValidateSplit(cfg.Training.ValidateSplit),
		training.WithSyntheticCount(cfg.Training.SyntheticCount),
		training.WithDebounce(0), // the CLI invocation is explicit; never debounce it
		training.WithSeed(cfg.Training.Seed),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := worker.Trigger(ctx); err != nil {
		return fmt.Errorf("training run: %w", err)
	}

	active, err := st.registry.Active(ctx)
	if err != nil {
		return err
	}
	if active != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "active model %s (f1=%.3f)\n", active.ID, active.Metrics.F1)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "training run completed; no model activated")
	}
	return nil
}
