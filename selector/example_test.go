package selector_test

import (
	"fmt"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
	"github.com/mortonne/eeg-analysis-toolbox/selector"
)

// Example derives class codes from a categorical field and folds from a
// session field.
func Example() {
	recs, _ := pattern.NewRecords([]string{"category", "session"}, [][]pattern.Value{
		{pattern.Str("face"), pattern.Num(1)},
		{pattern.Str("scene"), pattern.Num(1)},
		{pattern.Str("face"), pattern.Num(2)},
	})

	labels, _ := selector.Targets(recs, "category")
	folds, _ := selector.Folds(recs, "session")
	fmt.Println(labels.Values, labels.Levels)
	fmt.Println(folds)
	// Output:
	// [1 2 1] [face scene]
	// [1 1 2]
}
