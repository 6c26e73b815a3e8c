package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatchLoopDebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	built := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, path, 50*time.Millisecond, func() error {
			calls.Add(1)
			built <- struct{}{}
			return errors.New("render failed")
		}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	events <- fsnotify.Event{Name: filepath.Join(filepath.Dir(path), "other.json"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: path, Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: path, Op: fsnotify.Create}
	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	errs <- errors.New("queue overflow")

	select {
	case <-built:
	case <-time.After(2 * time.Second):
		t.Fatalf("rebuild was not triggered")
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("rebuild calls = %d, want 1", n)
	}

	// rebuild 失败后循环仍继续
	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	select {
	case <-built:
	case <-time.After(2 * time.Second):
		t.Fatalf("second rebuild was not triggered")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watchLoop returned %v", err)
	}
}

func TestWatchLoopStopsWhenChannelsClose(t *testing.T) {
	events := make(chan fsnotify.Event)
	close(events)
	err := watchLoop(context.Background(), events, make(chan error), "p.json", time.Millisecond,
		func() error { t.Fatalf("unexpected rebuild"); return nil }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("watchLoop returned %v", err)
	}
}
