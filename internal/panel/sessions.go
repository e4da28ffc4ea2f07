package panel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chatnav/chatnav/internal/transcript"
)

type sessionEntry struct {
	name    string
	path    string
	modTime time.Time
	size    int64
}

// discoverSessions lists the JSONL transcripts in dir, most recently written
// first.
func discoverSessions(dir string) ([]sessionEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing transcripts in %s: %w", dir, err)
	}
	out := make([]sessionEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, sessionEntry{
			name:    transcript.ConversationID(e.Name()),
			path:    filepath.Join(dir, e.Name()),
			modTime: info.ModTime(),
			size:    info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].modTime.After(out[j].modTime)
	})
	return out, nil
}

func (m *Model) reloadSessions() {
	if m.cfg.TranscriptsDir == "" {
		m.sessions = nil
		return
	}
	sessions, err := discoverSessions(m.cfg.TranscriptsDir)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.sessions = sessions
	if m.sessionCursor >= len(sessions) {
		m.sessionCursor = max(0, len(sessions)-1)
	}
}
