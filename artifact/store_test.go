package artifact_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mortonne/eeg-analysis-toolbox/artifact"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

func samplePattern(t *testing.T) *pattern.Pattern {
	t.Helper()
	events, err := pattern.NewRecords([]string{"category"}, [][]pattern.Value{{pattern.Str("A")}, {pattern.Str("B")}})
	require.NoError(t, err)
	chans, err := pattern.NewChannels([]int{1}, []string{"occipital"}, []string{"Oz"})
	require.NoError(t, err)
	arr, err := pattern.NewArrayFrom(pattern.Shape{2, 1, 2, 1}, []float64{1, math.NaN(), 3, 4})
	require.NoError(t, err)

	return &pattern.Pattern{
		Name:   "voltage",
		Source: "subj01",
		Array:  arr,
		Dims: pattern.Dims{
			Events: events,
			Chans:  chans,
			Time:   []pattern.Range{pattern.Placeholder("gap"), {Start: 0, End: 10, Avg: 5, Label: "0 to 10 ms"}},
			Freq:   pattern.UniformRanges(2, 2, 1, pattern.FreqUnit),
		},
		Params: map[string]string{"bins.time": "each"},
	}
}

func TestPathLayout(t *testing.T) {
	s := artifact.NewStore("/data/res")
	require.Equal(t,
		filepath.Join("/data/res", "subj01", "pattern", "pattern_voltage_subj01.gob"),
		s.Path(artifact.KindPattern, "voltage", "subj01"))
	require.Equal(t,
		filepath.Join("/data/res", "subj01", "stat", "stat_cat_subj01.gob"),
		s.Path(artifact.KindStat, "cat", "subj01"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := artifact.NewStore(t.TempDir(), artifact.WithLogger(zaptest.NewLogger(t)))
	p := samplePattern(t)

	ok, err := s.Exists(artifact.KindPattern, p.Name, p.Source)
	require.NoError(t, err)
	require.False(t, ok)

	path, err := s.Save(context.Background(), artifact.KindPattern, p.Name, p.Source, p)
	require.NoError(t, err)
	require.Equal(t, s.Path(artifact.KindPattern, p.Name, p.Source), path)
	ok, err = s.Exists(artifact.KindPattern, p.Name, p.Source)
	require.NoError(t, err)
	require.True(t, ok)

	// no temp or lock files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var got pattern.Pattern
	require.NoError(t, s.Load(artifact.KindPattern, p.Name, p.Source, &got))
	require.NoError(t, got.Validate())
	require.Equal(t, p.Array.Shape(), got.Array.Shape())
	require.True(t, math.IsNaN(got.Array.Data()[1]))
	require.Equal(t, 4.0, got.Array.Data()[3])
	require.True(t, got.Dims.Time[0].IsPlaceholder())
	require.Equal(t, "B", got.Dims.Events.Row(1)["category"].Str)
	require.Equal(t, p.Params, got.Params)

	kind, name, source, saved, err := s.Peek(path)
	require.NoError(t, err)
	require.Equal(t, artifact.KindPattern, kind)
	require.Equal(t, "voltage", name)
	require.Equal(t, "subj01", source)
	require.False(t, saved.IsZero())

	err = s.Load(artifact.KindStat, p.Name, p.Source, &got)
	require.Error(t, err) // no such stat file
	err = s.LoadFile(path, artifact.KindStat, &got)
	require.ErrorIs(t, err, artifact.ErrFormat)
}

func TestInvalidKey(t *testing.T) {
	s := artifact.NewStore(t.TempDir())
	_, err := s.Save(context.Background(), artifact.KindPattern, "../x", "subj01", 1)
	require.ErrorIs(t, err, pattern.ErrConfig)
	_, err = s.Exists(artifact.KindPattern, "x", "")
	require.ErrorIs(t, err, pattern.ErrConfig)
}

func TestSaveLockTimeoutKeepsExisting(t *testing.T) {
	s := artifact.NewStore(t.TempDir(),
		artifact.WithLockTimeout(80*time.Millisecond),
		artifact.WithPollInterval(10*time.Millisecond))
	ctx := context.Background()
	path, err := s.Save(ctx, artifact.KindStat, "cat", "subj01", []float64{1, 2})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path+".lock", []byte("4242\n"), 0o644))
	_, err = s.Save(ctx, artifact.KindStat, "cat", "subj01", []float64{9})
	require.ErrorIs(t, err, artifact.ErrLockTimeout)
	require.Contains(t, err.Error(), path)

	var got []float64
	require.NoError(t, s.Load(artifact.KindStat, "cat", "subj01", &got))
	require.Equal(t, []float64{1, 2}, got)
}

func TestSaveWaitsForLockRelease(t *testing.T) {
	s := artifact.NewStore(t.TempDir(),
		artifact.WithLockTimeout(5*time.Second),
		artifact.WithPollInterval(20*time.Millisecond))
	ctx := context.Background()
	path := s.Path(artifact.KindStat, "cat", "subj02")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path+".lock", nil, 0o644))

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(50 * time.Millisecond)
		_ = os.Remove(path + ".lock")
	}()

	_, err := s.Save(ctx, artifact.KindStat, "cat", "subj02", []float64{3})
	<-done
	require.NoError(t, err)
	var got []float64
	require.NoError(t, s.Load(artifact.KindStat, "cat", "subj02", &got))
	require.Equal(t, []float64{3}, got)
}

func TestSaveHonoursContext(t *testing.T) {
	s := artifact.NewStore(t.TempDir(), artifact.WithPollInterval(10*time.Millisecond))
	path := s.Path(artifact.KindStat, "cat", "subj03")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path+".lock", nil, 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := s.Save(ctx, artifact.KindStat, "cat", "subj03", 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOptionPanics(t *testing.T) {
	require.Panics(t, func() { artifact.WithLockTimeout(0) })
	require.Panics(t, func() { artifact.WithLogger(nil) })
}
