package panel

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiscoverSessionsSortsByRecency(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"old.jsonl", "new.jsonl", "notes.txt"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		mod := time.Now().Add(time.Duration(i-3) * time.Hour)
		if name == "new.jsonl" {
			mod = time.Now()
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
	}

	sessions, err := discoverSessions(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2 (non-jsonl excluded)", len(sessions))
	}
	if sessions[0].name != "new" || sessions[1].name != "old" {
		t.Fatalf("order = %q, %q", sessions[0].name, sessions[1].name)
	}
}

func TestDiscoverSessionsMissingDir(t *testing.T) {
	if _, err := discoverSessions(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
