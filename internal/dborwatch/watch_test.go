package dborwatch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dbor-go/dbor"
)

func TestWatcherDecodesNewFile(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	var buf bytes.Buffer
	enc := dbor.NewEncoder(dbor.NewWriterTransport(&buf))
	if err := enc.Encode(dbor.NewUint(42)); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	path := filepath.Join(dir, "value.dbor")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}

	select {
	case ev := <-w.Events():
		if ev.Err != nil {
			t.Fatalf("decode error: %v", ev.Err)
		}
		if !ev.Value.Equal(dbor.NewUint(42)) {
			t.Fatalf("unexpected decoded value: %+v", ev.Value)
		}
	case err := <-w.Errors():
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a watch event")
	}
}

func TestWatcherIgnoresNonDborFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "note.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for a non-.dbor file: %+v", ev)
	case <-time.After(300 * time.Millisecond):
		// no event, as expected.
	}
}

func TestWatcherCloseStopsLoop(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}
