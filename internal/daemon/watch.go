package daemon

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher signals on changes when session logs under a directory tree are
// written, coalescing bursts of events into one signal per debounce period.
type watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	changes  chan struct{}
}

func newWatcher(root string, debounce time.Duration) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fs:       fw,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
	}
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it. fsnotify is not
// recursive, so new subdirectories are added as they appear.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if err := w.fs.Add(path); err != nil {
				log.Printf("claudit: watch %s: %v", path, err)
			}
		}
		return nil
	})
}

func (w *watcher) run(ctx context.Context) {
	defer func() { _ = w.fs.Close() }()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addTree(ev.Name)
					continue
				}
			}
			if !isLogWrite(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("claudit: watch: %v", err)

		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

func isLogWrite(ev fsnotify.Event) bool {
	if !strings.HasSuffix(ev.Name, ".jsonl") {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
