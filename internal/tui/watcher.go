package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mtodo/mtodo/internal/debug"
)

// DefaultDebounce coalesces bursts of writes (sqlite touches the db, -wal and
// -shm files for one commit).
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to the database on disk.
type Watcher struct {
	fsw      *fsnotify.Watcher
	match    func(name string) bool
	debounce time.Duration
	changes  chan struct{}

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewWatcher watches dbPath. A file path is matched together with its
// -wal/-shm/-journal siblings; a directory (dolt) matches anything under it.
func NewWatcher(dbPath string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir, match := filepath.Dir(dbPath), func(string) bool { return true }
	if info, err := os.Stat(dbPath); err == nil && info.IsDir() {
		dir = dbPath
	} else {
		base := filepath.Base(dbPath)
		match = func(name string) bool { return strings.HasPrefix(filepath.Base(name), base) }
	}

	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:      fsw,
		match:    match,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changes receives one value per debounced burst. It is closed by Close.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	defer close(w.changes)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !w.match(event.Name) {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.Logf("watcher error: %v", err)
		}
	}
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
