package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/picogrid/reionsim/pkg/logger"
	"github.com/picogrid/reionsim/pkg/params"
)

// WatchDebounce is how long a burst of file events is coalesced before the
// inputs are reloaded.
var WatchDebounce = 500 * time.Millisecond

// ReloadFunc receives the result of every reload.
type ReloadFunc func(*params.InputSet, error)

// WatchInputsFile reloads the inputs file at path whenever it changes and
// passes the result to fn. Calls to fn never overlap. It blocks until ctx
// is done.
//
// The parent directory is watched rather than the file, so editors that
// replace the file by renaming keep being followed.
func WatchInputsFile(ctx context.Context, path string, fn ReloadFunc) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve inputs path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch inputs file: %w", err)
	}

	log := logger.WithPrefix("config").WithField("path", path)
	log.Info("watching inputs file for changes")

	var (
		mu       sync.Mutex
		pending  sync.WaitGroup
		debounce *time.Timer
	)
	reload := func() {
		defer pending.Done()
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		fn(LoadInputs(path))
	}
	// stopPending stops the scheduled reload, if any. A timer stopped
	// before firing never runs reload, so its slot is released here.
	stopPending := func() {
		if debounce != nil && debounce.Stop() {
			pending.Done()
		}
	}
	// No reload may still be running once the watcher returns.
	defer func() {
		stopPending()
		pending.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug("inputs watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debugf("inputs file changed (%s)", event.Op)

			stopPending()
			pending.Add(1)
			debounce = time.AfterFunc(WatchDebounce, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("inputs watcher error: %v", err)
		}
	}
}
