// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Kind names an artifact type.
type Kind string

// Artifact kinds.
const (
	KindPattern Kind = "pattern"
	KindStat    Kind = "stat"
)

// DefaultLockTimeout bounds the wait for another writer's lock.
const DefaultLockTimeout = 100 * time.Second

// formatVersion is bumped when the envelope layout changes.
const formatVersion = 1

// ErrLockTimeout is returned when the artifact lock is not acquired in time.
// It is terminal: Save does not retry.
var ErrLockTimeout = errors.New("artifact: lock timeout")

// ErrFormat is returned by Load for files that are not artifacts of the
// requested kind.
var ErrFormat = errors.New("artifact: unexpected file format")

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout overrides DefaultLockTimeout. Panics if d <= 0.
func WithLockTimeout(d time.Duration) Option {
	if d <= 0 {
		panic(fmt.Sprintf("artifact: WithLockTimeout(%v)", d))
	}
	return func(s *Store) { s.lockTimeout = d }
}

// WithPollInterval sets how often a waiting writer re-checks the lock when
// no file event arrives. Panics if d <= 0.
func WithPollInterval(d time.Duration) Option {
	if d <= 0 {
		panic(fmt.Sprintf("artifact: WithPollInterval(%v)", d))
	}
	return func(s *Store) { s.poll = d }
}

// WithLogger attaches a logger. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("artifact: WithLogger(nil)")
	}
	return func(s *Store) { s.logger = l }
}

// Store reads and writes artifacts under one root directory.
type Store struct {
	root        string
	lockTimeout time.Duration
	poll        time.Duration
	logger      *zap.Logger
}

// NewStore returns a store rooted at root.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:        root,
		lockTimeout: DefaultLockTimeout,
		poll:        250 * time.Millisecond,
		logger:      zap.NewNop(),
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// Path returns the deterministic location of an artifact.
func (s *Store) Path(kind Kind, name, source string) string {
	file := fmt.Sprintf("%s_%s_%s.gob", kind, name, source)
	return filepath.Join(s.root, source, string(kind), file)
}

// checkKey rejects identifiers that would escape the store layout.
func checkKey(kind Kind, name, source string) error {
	for field, v := range map[string]string{"kind": string(kind), "name": name, "source": source} {
		if v == "" || strings.ContainsAny(v, `/\`) || v == "." || v == ".." {
			return fmt.Errorf("artifact: invalid %s %q: %w", field, v, pattern.ErrConfig)
		}
	}
	return nil
}

// Exists reports whether the artifact file is present.
func (s *Store) Exists(kind Kind, name, source string) (bool, error) {
	if err := checkKey(kind, name, source); err != nil {
		return false, err
	}
	_, err := os.Stat(s.Path(kind, name, source))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("artifact: %w", err)
}

// envelope precedes the payload in every artifact file.
type envelope struct {
	Version int
	Kind    Kind
	Name    string
	Source  string
	Saved   time.Time
}

// Save atomically writes v as the artifact (kind, name, source) and returns
// its path. The write happens under the artifact lock.
func (s *Store) Save(ctx context.Context, kind Kind, name, source string, v any) (string, error) {
	if err := checkKey(kind, name, source); err != nil {
		return "", err
	}
	path := s.Path(kind, name, source)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: %s: %w", path, err)
	}

	unlock, err := s.lock(ctx, path)
	if err != nil {
		return "", fmt.Errorf("artifact: %s: %w", path, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn("release artifact lock", zap.String("path", path), zap.Error(err))
		}
	}()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return "", fmt.Errorf("artifact: %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName) // no-op after a successful rename
	}()

	enc := gob.NewEncoder(tmp)
	head := envelope{Version: formatVersion, Kind: kind, Name: name, Source: source, Saved: time.Now().UTC()}
	if err := enc.Encode(head); err != nil {
		return "", fmt.Errorf("artifact: %s: encode header: %w", path, err)
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("artifact: %s: encode %s: %w", path, kind, err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("artifact: %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("artifact: %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("artifact: %s: %w", path, err)
	}
	s.logger.Info("saved artifact",
		zap.String("kind", string(kind)),
		zap.String("name", name),
		zap.String("source", source),
		zap.String("path", path))

	return path, nil
}

// Load decodes the artifact (kind, name, source) into v, which must be a
// pointer.
func (s *Store) Load(kind Kind, name, source string, v any) error {
	if err := checkKey(kind, name, source); err != nil {
		return err
	}
	return s.LoadFile(s.Path(kind, name, source), kind, v)
}

// LoadFile decodes an artifact file of the given kind into v.
func (s *Store) LoadFile(path string, kind Kind, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	var head envelope
	if err := dec.Decode(&head); err != nil {
		return fmt.Errorf("artifact: %s: %w: %v", path, ErrFormat, err)
	}
	if head.Version != formatVersion || head.Kind != kind {
		return fmt.Errorf("artifact: %s: %w: %s v%d, want %s v%d",
			path, ErrFormat, head.Kind, head.Version, kind, formatVersion)
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("artifact: %s: decode %s: %w", path, kind, err)
	}
	return nil
}

// Peek reads only the header of an artifact file.
func (s *Store) Peek(path string) (kind Kind, name, source string, saved time.Time, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", "", time.Time{}, fmt.Errorf("artifact: %w", err)
	}
	defer f.Close()
	var head envelope
	if err := gob.NewDecoder(f).Decode(&head); err != nil {
		return "", "", "", time.Time{}, fmt.Errorf("artifact: %s: %w: %v", path, ErrFormat, err)
	}
	return head.Kind, head.Name, head.Source, head.Saved, nil
}
