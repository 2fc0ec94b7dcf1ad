package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_SignalsOnLogWrite(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "-home-me-proj"), 0o750); err != nil {
		t.Fatal(err)
	}

	w, err := newWatcher(root, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("newWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.run(ctx)

	path := filepath.Join(root, "-home-me-proj", "s.jsonl")
	if err := os.WriteFile(path, []byte(`{"type":"user"}`+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after writing a session log")
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	if _, err := newWatcher(filepath.Join(t.TempDir(), "absent"), time.Second); err == nil {
		t.Fatal("newWatcher on a missing root succeeded")
	}
}

func TestIsLogWrite(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "a/s.jsonl", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "a/s.jsonl", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "a/s.jsonl", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "a/s.jsonl", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "a/notes.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := isLogWrite(tt.ev); got != tt.want {
			t.Errorf("isLogWrite(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}
