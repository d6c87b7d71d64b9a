package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mortonne/eeg-analysis-toolbox/artifact"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// seed saves a raw pattern "raw" for source subj01: 6 events (category
// A,A,B,B,A,B; session 1,1,1,2,2,2) × 1 channel × 4 samples × 1 frequency,
// with class B shifted by 10.
func seed(t *testing.T, root string) {
	t.Helper()
	cats := []string{"A", "A", "B", "B", "A", "B"}
	rows := make([][]pattern.Value, len(cats))
	data := make([]float64, 0, 24)
	for i, c := range cats {
		rows[i] = []pattern.Value{pattern.Str(c), pattern.Num(float64(i/3 + 1))}
		shift := 0.0
		if c == "B" {
			shift = 10
		}
		for k := 0; k < 4; k++ {
			data = append(data, shift+float64(i%3)*0.1+float64(k)*0.01)
		}
	}
	events, err := pattern.NewRecords([]string{"category", "session"}, rows)
	require.NoError(t, err)
	chans, err := pattern.NewChannels([]int{1}, []string{"frontal"}, []string{"Fz"})
	require.NoError(t, err)
	arr, err := pattern.NewArrayFrom(pattern.Shape{6, 1, 4, 1}, data)
	require.NoError(t, err)
	p := &pattern.Pattern{
		Name:   "raw",
		Source: "subj01",
		Array:  arr,
		Dims: pattern.Dims{
			Events: events,
			Chans:  chans,
			Time:   pattern.UniformRanges(0, 50, 4, pattern.TimeUnit),
			Freq:   []pattern.Range{{Label: "broadband"}},
		},
	}
	_, err = artifact.NewStore(root).Save(context.Background(), artifact.KindPattern, "raw", "subj01", p)
	require.NoError(t, err)
}

func writeConfig(t *testing.T, root string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := fmt.Sprintf(`store:
  root: %s
sources: [subj01]
bin:
  pattern: raw
  name: win
  bins:
    time: [[0, 100], [100, 200]]
classify:
  pattern: win
  name: cat
  regressor: [category]
  selector: [session]
  seed: 1
  iter:
    time: each
`, root)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, verbose, overwrite = "", false, false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestBinClassifyInspect(t *testing.T) {
	root := t.TempDir()
	seed(t, root)
	cfgPath := writeConfig(t, root)

	out, err := execute(t, "bin", "-c", cfgPath)
	require.NoError(t, err)
	winPath := filepath.Join(root, "subj01", "pattern", "pattern_win_subj01.gob")
	require.Contains(t, out, "saved   "+winPath)

	out, err = execute(t, "bin", "-c", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "exists  "+winPath)

	out, err = execute(t, "classify", "-c", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "accuracy 1.000 1.000")
	require.Contains(t, out, "regressor: category")

	statPath := filepath.Join(root, "subj01", "stat", "stat_cat_subj01.gob")
	out, err = execute(t, "inspect", "-c", cfgPath, winPath, statPath)
	require.NoError(t, err)
	require.Contains(t, out, `pattern "win" source "subj01"`)
	require.Contains(t, out, "shape   [6 1 2 1]")
	require.Contains(t, out, "chan    Fz")
	require.Contains(t, out, `stat "cat" source "subj01"`)
	require.Contains(t, out, "accuracy 1.000 1.000")
}

func TestBinRequiresName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [s]\n"), 0o644))

	_, err := execute(t, "bin", "-c", path)
	require.ErrorContains(t, err, "bin.name not specified")
}

func TestInspectRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.gob")
	require.NoError(t, os.WriteFile(path, []byte("not an artifact"), 0o644))

	_, err := execute(t, "inspect", path)
	require.ErrorIs(t, err, artifact.ErrFormat)
}
