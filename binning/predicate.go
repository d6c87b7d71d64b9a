// SPDX-License-Identifier: MIT

package binning

import (
	"fmt"
	"go/token"
	"math"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// predicateFunc is the compiled form of one expression. num and str hold the
// current record: num[j] for numeric columns, str[j] for categorical ones.
type predicateFunc func(num []float64, str []string) bool

// predicateSet evaluates compiled expressions row by row over one table.
type predicateSet struct {
	recs    *pattern.Records
	numeric []bool
	funcs   []predicateFunc
	num     []float64
	str     []string
}

// compilePredicates compiles every expression once against the field schema
// of recs. Each field whose name is a Go identifier becomes a local variable:
// float64 for numeric columns (NaN when missing), string otherwise. The
// expression is an ordinary Go boolean expression, e.g.
//
//	category == "A" && rt < 800
//	strings.HasPrefix(region, "L") || math.IsNaN(rt)
func compilePredicates(recs *pattern.Records, exprs []string) (*predicateSet, error) {
	fields := recs.Fields()
	ps := &predicateSet{
		recs:    recs,
		numeric: make([]bool, len(fields)),
		num:     make([]float64, len(fields)),
		str:     make([]string, len(fields)),
	}

	var locals strings.Builder
	for j, f := range fields {
		ps.numeric[j] = recs.IsNumeric(j)
		if !token.IsIdentifier(f) || token.IsKeyword(f) {
			continue
		}
		if ps.numeric[j] {
			fmt.Fprintf(&locals, "\t%s := num[%d]\n\t_ = %s\n", f, j, f)
		} else {
			fmt.Fprintf(&locals, "\t%s := str[%d]\n\t_ = %s\n", f, j, f)
		}
	}

	var src strings.Builder
	src.WriteString("package main\n\nimport (\n\t\"math\"\n\t\"strings\"\n)\n\n")
	src.WriteString("var _ = math.IsNaN\nvar _ = strings.HasPrefix\n\n")
	for k, e := range exprs {
		if strings.TrimSpace(e) == "" {
			return nil, fmt.Errorf("binning: expr %d: %w: empty expression", k, pattern.ErrConfig)
		}
		fmt.Fprintf(&src, "func P%d(num []float64, str []string) bool {\n%s\treturn (%s)\n}\n\n", k, locals.String(), e)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("binning: load interpreter symbols: %w", err)
	}
	if _, err := i.Eval(src.String()); err != nil {
		return nil, fmt.Errorf("binning: compile expr %q: %w: %v", exprs, pattern.ErrConfig, err)
	}

	ps.funcs = make([]predicateFunc, len(exprs))
	for k, e := range exprs {
		v, err := i.Eval(fmt.Sprintf("main.P%d", k))
		if err != nil {
			return nil, fmt.Errorf("binning: expr %q: %w: %v", e, pattern.ErrConfig, err)
		}
		fn, ok := v.Interface().(func([]float64, []string) bool)
		if !ok {
			return nil, fmt.Errorf("binning: expr %q: %w: not a boolean expression", e, pattern.ErrConfig)
		}
		ps.funcs[k] = fn
	}

	return ps, nil
}

// load copies record i into the row buffers.
func (ps *predicateSet) load(i int) {
	for j := range ps.numeric {
		v := ps.recs.ColumnAt(j)[i]
		if ps.numeric[j] {
			ps.num[j] = v.Num
			ps.str[j] = ""
		} else {
			ps.str[j] = v.String()
			ps.num[j] = math.NaN()
		}
	}
}

// bins returns, for every expression, the records that satisfy it.
func (ps *predicateSet) bins() (out [][]int, err error) {
	k := 0
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("binning: expr %d: %w: %v", k, pattern.ErrConfig, r)
		}
	}()

	out = make([][]int, len(ps.funcs))
	for i := 0; i < ps.recs.Len(); i++ {
		ps.load(i)
		for k = range ps.funcs {
			if ps.funcs[k](ps.num, ps.str) {
				out[k] = append(out[k], i)
			}
		}
	}

	return out, nil
}
