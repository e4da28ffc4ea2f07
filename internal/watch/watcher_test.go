package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestBurstCoalescesToOneSignal(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		writeFile(t, dir, "session.jsonl", "line\n")
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-w.C:
	case <-time.After(2 * time.Second):
		t.Fatalf("no signal after burst")
	}

	// The burst already ended; no second signal may arrive.
	select {
	case <-w.C:
		t.Fatalf("burst produced more than one signal")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSeparateBurstsSignalSeparately(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "a.jsonl", "one\n")
	select {
	case <-w.C:
	case <-time.After(2 * time.Second):
		t.Fatalf("no signal for first burst")
	}

	writeFile(t, dir, "a.jsonl", "two\n")
	select {
	case <-w.C:
	case <-time.After(2 * time.Second):
		t.Fatalf("no signal for second burst")
	}
}

func TestNewFailsForMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), time.Millisecond); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
