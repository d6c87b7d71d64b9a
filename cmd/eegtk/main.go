// SPDX-License-Identifier: MIT

// Command eegtk bins EEG patterns and runs cross-validated classification
// over saved artifacts, driven by a YAML run configuration.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mortonne/eeg-analysis-toolbox/artifact"
	"github.com/mortonne/eeg-analysis-toolbox/config"
	"github.com/mortonne/eeg-analysis-toolbox/logging"
	"github.com/mortonne/eeg-analysis-toolbox/pipeline"
)

var (
	// Global flags
	configPath string
	verbose    bool
	overwrite  bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "eegtk",
	Short: "EEG pattern binning and classification toolbox",
	Long: `eegtk creates binned EEG patterns and classifies them with
leave-one-fold-out cross-validation. Results are saved as artifacts under
<store.root>/<source>/<kind>/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg = config.DefaultConfig()
		if configPath != "" {
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if overwrite {
			cfg.Store.Overwrite = true
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML run configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&overwrite, "overwrite", false, "Replace existing artifacts")

	rootCmd.AddCommand(binCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newPipeline builds the store and pipeline from the loaded configuration.
func newPipeline() (*pipeline.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout, err := cfg.LockTimeout()
	if err != nil {
		return nil, err
	}
	store := artifact.NewStore(cfg.Store.Root,
		artifact.WithLockTimeout(timeout),
		artifact.WithLogger(logger))
	return pipeline.New(store,
		pipeline.WithOverwrite(cfg.Store.Overwrite),
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithLogger(logger)), nil
}
