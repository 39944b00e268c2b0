package expiry

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hay-kot/reviewdesk/internal/core/logging"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 1
)

// Watcher signals when the shared database changes on disk, letting a view
// refresh before its next scheduled tick. It is a hint only; the per-tick
// cache read stays authoritative.
type Watcher struct {
	watcher *fsnotify.Watcher
	file    string

	mu       sync.Mutex
	subs     []chan struct{}
	debounce *time.Timer
	closed   bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher watches dataDir for writes to the database file named file
// and its WAL.
func NewWatcher(dataDir, file string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(dataDir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		file:    file,
		done:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Subscribe returns a channel that receives a value after each burst of
// writes. Sends never block; a pending signal absorbs later ones. The
// channel is closed when ctx ends or the watcher closes.
func (w *Watcher) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, eventBufferSize)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		close(ch)
		return ch
	}
	w.subs = append(w.subs, ch)
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.unsubscribe(ch)
		case <-w.done:
		}
	}()

	return ch
}

// Close stops watching and closes all subscriber channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	if w.debounce != nil {
		w.debounce.Stop()
	}
	for _, ch := range w.subs {
		close(ch)
	}
	w.subs = nil
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) unsubscribe(ch chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, sub := range w.subs {
		if sub == ch {
			w.subs = append(w.subs[:i], w.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()
	log := logging.Component("expiry-watcher")

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	name := filepath.Base(event.Name)
	if !strings.HasPrefix(name, w.file) || strings.HasSuffix(name, "-shm") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.broadcast)
}

func (w *Watcher) broadcast() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	for _, ch := range w.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
