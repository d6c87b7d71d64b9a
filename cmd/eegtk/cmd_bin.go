// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mortonne/eeg-analysis-toolbox/pipeline"
)

// binCmd rebins a saved pattern for every source
var binCmd = &cobra.Command{
	Use:   "bin",
	Short: "Create a binned pattern from a saved pattern",
	Long: `Loads bin.pattern for every listed source, applies the bin specs of
bin.bins and saves the result as bin.name.`,
	RunE: runBin,
}

func runBin(cmd *cobra.Command, _ []string) error {
	if cfg.Bin.Name == "" {
		return fmt.Errorf("bin.name not specified")
	}
	pl, err := newPipeline()
	if err != nil {
		return err
	}
	specs, err := cfg.Bin.Bins.Specs()
	if err != nil {
		return err
	}

	for _, source := range cfg.Sources {
		from, err := pl.LoadPattern(cfg.Bin.Pattern, source)
		if err != nil {
			return err
		}
		_, out, err := pl.CreatePattern(cmd.Context(), pipeline.PatternRequest{
			Name:     cfg.Bin.Name,
			SourceID: source,
			From:     from,
			Specs:    specs,
		})
		if err != nil {
			return err
		}
		logger.Info("bin", zap.String("source", source), zap.String("path", out.Path), zap.Bool("skipped", out.Skipped))
		fmt.Fprintln(cmd.OutOrStdout(), status(out))
	}
	return nil
}

func status(out pipeline.Outcome) string {
	if out.Skipped {
		return "exists  " + out.Path
	}
	return "saved   " + out.Path
}
