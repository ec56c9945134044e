package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes to the image files under dir. Bursts of filesystem
// events are coalesced: one signal is sent once quiet has passed without a new
// event. The channel is closed when ctx is canceled.
func Watch(ctx context.Context, dir string, quiet time.Duration, logger LoggerFunc) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// fsnotify is not recursive; watch every directory in the tree.
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	changed := make(chan struct{}, 1)
	go func() {
		defer close(changed)
		defer w.Close()

		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) {
					// New subdirectories need their own watch.
					_ = w.Add(ev.Name)
				}
				if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
					continue
				}
				settle = time.After(quiet)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if logger != nil {
					logger(fmt.Sprintf("watcher: %v", err))
				}
			case <-settle:
				settle = nil
				select {
				case changed <- struct{}{}:
				default:
					// A signal is already waiting.
				}
			}
		}
	}()
	return changed, nil
}
