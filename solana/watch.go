package solana

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// keystoreWatcher calls onChange whenever the keystore file is written,
// replaced, renamed or removed, with removed set for the last two. The parent
// directory is watched so that atomic replacements are seen.
type keystoreWatcher struct {
	path     string
	onChange func(removed bool)
	logger   *slog.Logger

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func watchKeystore(path string, onChange func(removed bool), logger *slog.Logger) (*keystoreWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve keystore path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch keystore directory: %w", err)
	}

	w := &keystoreWatcher{
		path:      absPath,
		onChange:  onChange,
		logger:    logger,
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *keystoreWatcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.onChange(isRemoval(event.Op))

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("keystore watcher error", "error", err)
		}
	}
}

func isRemoval(op fsnotify.Op) bool {
	return op&(fsnotify.Remove|fsnotify.Rename) != 0
}

// Close stops the watcher and waits for the loop to exit.
func (w *keystoreWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.fsWatcher.Close()
	})
	return err
}
