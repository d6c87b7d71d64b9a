// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// lockPath returns the advisory lock file guarding path.
func lockPath(path string) string { return path + ".lock" }

// lock takes the advisory lock for path, waiting at most the store timeout.
// The returned function releases it.
func (s *Store) lock(ctx context.Context, path string) (func() error, error) {
	lp := lockPath(path)
	ok, err := tryLock(lp)
	if err != nil {
		return nil, err
	}
	if ok {
		return release(lp), nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Debug("fsnotify unavailable, polling lock", zap.Error(err))
	} else {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(lp)); err != nil {
			s.logger.Debug("watch lock dir", zap.String("dir", filepath.Dir(lp)), zap.Error(err))
		}
	}
	var events chan fsnotify.Event
	var errs chan error
	if watcher != nil {
		events, errs = watcher.Events, watcher.Errors
	}

	s.logger.Info("waiting for artifact lock", zap.String("lock", lp), zap.Duration("timeout", s.lockTimeout))
	deadline := time.NewTimer(s.lockTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(s.poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("%w: %s held for more than %v", ErrLockTimeout, lp, s.lockTimeout)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Name != lp || (!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename)) {
				continue
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Debug("lock watcher", zap.Error(err))
			continue
		case <-tick.C:
		}

		ok, err := tryLock(lp)
		if err != nil {
			return nil, err
		}
		if ok {
			return release(lp), nil
		}
	}
}

// tryLock creates the lock file exclusively; false means it is held.
func tryLock(lp string) (bool, error) {
	f, err := os.OpenFile(lp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(lp)
		return false, werr
	}
	return true, nil
}

func release(lp string) func() error {
	return func() error { return os.Remove(lp) }
}
