package storage

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"
)

// DefaultSettle is how long the directory must stay quiet before a change is reported.
const DefaultSettle = time.Second

// Watcher reports changes to a library directory.
// Bursts of filesystem events are coalesced into a single notification.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	settle  time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher starts watching dir.
func NewWatcher(dir string, settle time.Duration) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}

	w := &Watcher{
		watcher: fw,
		changes: make(chan struct{}, 1),
		settle:  settle,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes delivers one value per settled burst of changes.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	// A copy to an SD card emits create, several writes and a chmod per file;
	// wait until the burst is over before asking for a rescan.
	timer := time.NewTimer(w.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				zlog.Debug().Msgf("storage: change detected: op=%s name=%s", event.Op, event.Name)
				timer.Reset(w.settle)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zlog.Error().Msgf("storage: watcher error: %s", err)
		case <-timer.C:
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}
