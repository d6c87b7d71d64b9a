// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mortonne/eeg-analysis-toolbox/pipeline"
)

// classifyCmd cross-validates a saved pattern for every source
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Cross-validate a classifier on a saved pattern",
	Long: `Loads classify.pattern for every listed source, derives targets from
classify.regressor and folds from classify.selector, runs leave-one-fold-out
cross-validation on every cell of classify.iter and saves one stat artifact.`,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, _ []string) error {
	cc := cfg.Classify
	if cc.Name == "" {
		return fmt.Errorf("classify.name not specified")
	}
	pl, err := newPipeline()
	if err != nil {
		return err
	}
	iter, err := cc.Iter.Specs()
	if err != nil {
		return err
	}
	vcfg, err := cc.Validator()
	if err != nil {
		return err
	}

	for _, source := range cfg.Sources {
		pat, err := pl.LoadPattern(cc.Pattern, source)
		if err != nil {
			return err
		}
		st, out, err := pl.Classify(cmd.Context(), pipeline.ClassifyRequest{
			Name:          cc.Name,
			Pattern:       pat,
			Regressor:     cc.Regressor,
			TestRegressor: cc.TestRegressor,
			Selector:      cc.Selector,
			TrainGroups:   cc.TrainGroups,
			Iter:          iter,
			Validator:     vcfg,
			Params:        map[string]string{"train": cc.Train},
		})
		if err != nil {
			return err
		}
		logger.Info("classify", zap.String("source", source), zap.String("path", out.Path), zap.Bool("skipped", out.Skipped))
		fmt.Fprintln(cmd.OutOrStdout(), status(out))
		if st != nil {
			if err := printStat(cmd.OutOrStdout(), st); err != nil {
				return err
			}
		}
	}
	return nil
}
