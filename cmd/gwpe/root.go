package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-gwpe/internal/config"
	"github.com/cwbudde/algo-gwpe/internal/logging"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gwpe",
		Short: "Bayesian parameter estimation for GW190521",
		Long: `gwpe fits a nine-parameter compact-binary model to H1, L1 and V1 strain
around GW190521 with an affine-invariant ensemble sampler.

Chains are persisted to SQLite after every iteration so interrupted runs
can be resumed. Posterior samples and the MAP table are written as parquet
and may be published to S3-compatible storage.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "gwpe.yaml", "YAML configuration file (missing file uses defaults)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newInjectCmd(a),
		newPSDCmd(a),
		newSampleCmd(a),
		newSummarizeCmd(a),
		newSNRCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	logger, err := logging.New(
		logging.WithLevel(cfg.Logging.Level),
		logging.WithDevelopment(cfg.Logging.Development),
		logging.WithFields(map[string]any{"command": cmd.Name()}),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.out = cmd.OutOrStdout()
	return nil
}
