// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mortonne/eeg-analysis-toolbox/aggregate"
	"github.com/mortonne/eeg-analysis-toolbox/artifact"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
	"github.com/mortonne/eeg-analysis-toolbox/results"
)

// inspectCmd prints artifact summaries
var inspectCmd = &cobra.Command{
	Use:   "inspect [artifact.gob...]",
	Short: "Print a summary of saved pattern or stat artifacts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	store := artifact.NewStore(cfg.Store.Root)
	w := cmd.OutOrStdout()
	for _, path := range args {
		kind, name, source, saved, err := store.Peek(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %q source %q saved %s\n", kind, name, source, saved.Format("2006-01-02 15:04:05"))
		switch kind {
		case artifact.KindPattern:
			var p pattern.Pattern
			if err := store.LoadFile(path, kind, &p); err != nil {
				return err
			}
			printPattern(w, &p)
		case artifact.KindStat:
			var st results.Stat
			if err := store.LoadFile(path, kind, &st); err != nil {
				return err
			}
			if err := printStat(w, &st); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unknown artifact kind %q", path, kind)
		}
	}
	return nil
}

func printPattern(w io.Writer, p *pattern.Pattern) {
	fmt.Fprintf(w, "  shape   %v\n", p.Array.Shape())
	fmt.Fprintf(w, "  events  %d (fields %s)\n", p.Dims.Events.Len(), strings.Join(p.Dims.Events.Fields(), ", "))
	fmt.Fprintf(w, "  chan    %s\n", recordLabels(p.Dims.Chans))
	fmt.Fprintf(w, "  time    %s\n", rangeLabels(p.Dims.Time))
	fmt.Fprintf(w, "  freq    %s\n", rangeLabels(p.Dims.Freq))
	fmt.Fprintf(w, "  mean    %.4g\n", aggregate.NanMean(p.Array.Data()))
	printParams(w, p.Params)
}

func printStat(w io.Writer, st *results.Stat) error {
	fmt.Fprintf(w, "  shape   %v (run %s)\n", st.Shape, st.RunID)
	fmt.Fprintf(w, "  chan    %s\n", recordLabels(st.Dims.Chans))
	fmt.Fprintf(w, "  time    %s\n", rangeLabels(st.Dims.Time))
	fmt.Fprintf(w, "  freq    %s\n", rangeLabels(st.Dims.Freq))
	for _, m := range st.Metrics() {
		mean, err := st.MeanPerf(m)
		if err != nil {
			return err
		}
		vals := make([]string, len(mean.Data()))
		for i, v := range mean.Data() {
			vals[i] = fmt.Sprintf("%.3f", v)
		}
		fmt.Fprintf(w, "  %-7s %s\n", m, strings.Join(vals, " "))
	}
	printParams(w, st.Params)
	return nil
}

func printParams(w io.Writer, params map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(params)) {
		fmt.Fprintf(w, "  %s: %s\n", k, params[k])
	}
}

func recordLabels(r *pattern.Records) string {
	if r.Len() == 0 {
		return "-"
	}
	col, err := r.Column("label")
	if err != nil {
		return fmt.Sprintf("%d elements", r.Len())
	}
	out := make([]string, len(col))
	for i, v := range col {
		out[i] = v.String()
	}
	return strings.Join(out, " | ")
}

func rangeLabels(rs []pattern.Range) string {
	if len(rs) == 0 {
		return "-"
	}
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Label
	}
	return strings.Join(out, " | ")
}
