// Package dborwatch watches a directory for .dbor files and decodes
// them as they are created or modified, for interactive inspection
// during development (the "watch" mode of cmd/dbor-cli).
package dborwatch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dbor-go/dbor"
)

// Event reports a decoded (or failed-to-decode) .dbor file.
type Event struct {
	Path  string
	Value dbor.Value
	Err   error
}

// Watcher decodes .dbor files as they change in a directory.
type Watcher struct {
	w    *fsnotify.Watcher
	evC  chan Event
	errC chan error

	mu     sync.Mutex
	closed bool
}

// New starts watching dir. Pre-existing files are not decoded; only
// subsequent create/write events are reported.
func New(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		w:    fw,
		evC:  make(chan Event, 32),
		errC: make(chan error, 1),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				close(w.evC)
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".dbor") {
				continue
			}
			w.decodeAndEmit(ev.Name)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			select {
			case w.errC <- err:
			default:
			}
		}
	}
}

func (w *Watcher) decodeAndEmit(path string) {
	f, err := os.Open(path)
	if err != nil {
		w.evC <- Event{Path: path, Err: err}
		return
	}
	defer f.Close()

	dec := dbor.NewDecoder(dbor.NewReaderTransport(f))
	v, err := dbor.DecodeValue(dec)
	w.evC <- Event{Path: filepath.Clean(path), Value: v, Err: err}
}

// Events returns the channel of decoded files.
func (w *Watcher) Events() <-chan Event { return w.evC }

// Errors returns the channel of watcher-level (non-decode) errors.
func (w *Watcher) Errors() <-chan error { return w.errC }

// Close stops watching and releases the underlying OS resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.w.Close()
}
