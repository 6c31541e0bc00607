package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherTriggersReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minos.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	var reloads atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	// Give the watcher time to register before touching the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for reloads.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("reload was not triggered")
		case <-time.After(20 * time.Millisecond):
		}
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	<-done
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minos.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	var reloads atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx, func() error {
		reloads.Add(1)
		return nil
	})

	time.Sleep(100 * time.Millisecond)
	other := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(other, []byte("b: 1\n"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Errorf("reloads = %d, want 0 for sibling file changes", got)
	}
	w.Stop()
}

func TestDebouncerCoalesces(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minos.yaml")
	os.WriteFile(path, []byte("a: 1\n"), 0o644)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx := context.Background()
	go w.Watch(ctx, func() error { return nil })
	time.Sleep(50 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
