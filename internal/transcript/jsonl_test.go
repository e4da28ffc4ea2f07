package transcript

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleTranscript = `{"type":"message","id":"s1","message":{"role":"system","content":"session start"}}
{"type":"message","id":"u1","message":{"role":"user","content":"how do I sort a slice?"}}
{"type":"message","id":"a1","message":{"role":"assistant","content":[{"type":"text","text":"Use sort.Slice."},{"type":"text","text":"Or slices.Sort for ordered types."}]}}
{"type":"summary","id":"x1"}
{"type":"message","id":"u2","message":{"role":"user","content":[{"type":"text","text":"what about stability?"}]}}
{"type":"message","id":"a2","message":{"role":"assistant","content":"sort.SliceStable keeps equal elements in order."}}
`

func writeTranscript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abc123.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}

func TestFileSourceReload(t *testing.T) {
	src := NewFileSource(writeTranscript(t, sampleTranscript))
	if err := src.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	nodes := src.Turns()
	if len(nodes) != 3 {
		t.Fatalf("expected 3 turn nodes (1 leading + 2 user), got %d", len(nodes))
	}
	if nodes[0].UserText() != "" {
		t.Fatalf("leading system turn should have no user text, got %q", nodes[0].UserText())
	}
	if nodes[1].StableID() != "u1" || nodes[2].StableID() != "u2" {
		t.Fatalf("stable ids = %q, %q", nodes[1].StableID(), nodes[2].StableID())
	}
	if nodes[1].UserText() != "how do I sort a slice?" {
		t.Fatalf("user text = %q", nodes[1].UserText())
	}
	want := "Use sort.Slice.\nOr slices.Sort for ordered types."
	if nodes[1].AssistantText() != want {
		t.Fatalf("assistant text = %q, want %q", nodes[1].AssistantText(), want)
	}
}

func TestFileSourceScanIntegration(t *testing.T) {
	src := NewFileSource(writeTranscript(t, sampleTranscript))
	if err := src.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	items := Scan(src, testOpts)
	if len(items) != 2 {
		t.Fatalf("expected 2 indexed turns, got %d", len(items))
	}
	if items[0].Index != 1 || items[1].Index != 2 {
		t.Fatalf("indexes = %d, %d", items[0].Index, items[1].Index)
	}
	if items[0].Summary != "how do I sort a slice?" {
		t.Fatalf("summary = %q", items[0].Summary)
	}
}

func TestFileSourceMalformedLinesSkipped(t *testing.T) {
	src := NewFileSource(writeTranscript(t, "not json\n"+sampleTranscript+"{\"type\":\"message\"\n"))
	if err := src.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(src.Turns()) != 3 {
		t.Fatalf("malformed lines must be skipped, got %d nodes", len(src.Turns()))
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.jsonl"))
	if err := src.Reload(); err == nil {
		t.Fatalf("expected error for missing transcript")
	}
}

func TestConversationID(t *testing.T) {
	if got := ConversationID("/tmp/sessions/abc123.jsonl"); got != "abc123" {
		t.Fatalf("ConversationID = %q", got)
	}
	if got := ConversationID(""); got != "default" {
		t.Fatalf("ConversationID of empty path = %q, want default", got)
	}
}
