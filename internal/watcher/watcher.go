// Package watcher observes the shared-file root and emits change events
// that drive automatic sync cycles in the watch daemon.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"teamsync/internal/logger"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Change struct {
	Path string
	At   time.Time
}

type Watcher struct {
	fw       *fsnotify.Watcher
	changeCh chan Change
	doneCh   chan struct{}
}

func New(bufferSize int) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		fw:       fw,
		changeCh: make(chan Change, bufferSize),
		doneCh:   make(chan struct{}),
	}, nil
}

func (w *Watcher) Watch(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if _, err := os.Stat(absDir); err != nil {
		return fmt.Errorf("shared root not found: %w", err)
	}

	if err := w.addRecursive(absDir); err != nil {
		return err
	}

	go w.run()

	logger.Log.Info("watcher started",
		zap.String("dir", absDir))
	return nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if err := w.fw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			logger.Log.Debug("watching directory",
				zap.String("path", path))
		}

		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.changeCh)

	for {
		select {
		case <-w.doneCh:
			logger.Log.Info("watcher stopping")
			return

		case fsEvent, ok := <-w.fw.Events:
			if !ok {
				return
			}

			if !relevant(fsEvent.Op) {
				continue
			}

			if fsEvent.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if err := w.fw.Add(fsEvent.Name); err != nil {
						logger.Log.Warn("failed to watch new directory",
							zap.String("path", fsEvent.Name),
							zap.Error(err))
					}
					continue
				}
			}

			change := Change{Path: fsEvent.Name, At: time.Now()}

			select {
			case w.changeCh <- change:
			default:
				logger.Log.Warn("change channel is full, dropping event",
					zap.String("path", fsEvent.Name))
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			logger.Log.Error("watcher error",
				zap.Error(err))
		}
	}
}

func (w *Watcher) Changes() <-chan Change {
	return w.changeCh
}

func (w *Watcher) Stop() {
	close(w.doneCh)
	_ = w.fw.Close()
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
