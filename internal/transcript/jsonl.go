package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileTurn groups one user message with the assistant text that follows it.
// Transcript content preceding the first user message becomes a turn with no
// user text, which the scan engine skips.
type fileTurn struct {
	id        string
	user      string
	assistant string
}

func (t *fileTurn) StableID() string      { return t.id }
func (t *fileTurn) UserText() string      { return t.user }
func (t *fileTurn) AssistantText() string { return t.assistant }

// FileSource reads turns from a JSONL session transcript. It is the concrete
// content-location strategy; Reload re-parses the file wholesale, invalidating
// previously handed-out nodes.
type FileSource struct {
	path  string
	turns []TurnNode
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Turns() []TurnNode { return s.turns }

// ConversationID derives the conversation identity for a transcript path:
// the file name without its extension. A change in this identity means the
// rename overrides for the new scope must be reloaded.
func ConversationID(path string) string {
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))
	if id == "" {
		return "default"
	}
	return id
}

// sessionLine is the top-level JSON object in each JSONL row.
type sessionLine struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Message json.RawMessage `json:"message"`
}

// lineMessage is the nested message payload within a session line.
type lineMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// contentBlock supports the JSONL message content block format.
type contentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Content json.RawMessage `json:"content"`
}

// Reload re-parses the transcript file and rebuilds the turn list.
func (s *FileSource) Reload() error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open transcript %q: %w", s.path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	turns := make([]TurnNode, 0, 64)
	var current *fileTurn
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item sessionLine
		if err := json.Unmarshal(line, &item); err != nil || item.Type != "message" {
			continue
		}
		var msg lineMessage
		if err := json.Unmarshal(item.Message, &msg); err != nil {
			continue
		}

		text := normalizeContent(msg.Content)
		switch msg.Role {
		case "user":
			current = &fileTurn{id: item.ID, user: text}
			turns = append(turns, current)
		default:
			if current == nil {
				// Leading system/assistant content: an unindexable turn.
				current = &fileTurn{}
				turns = append(turns, current)
			}
			if text != "" {
				if current.assistant != "" {
					current.assistant += "\n"
				}
				current.assistant += text
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan transcript %q: %w", s.path, err)
	}

	s.turns = turns
	return nil
}

// normalizeContent flattens the message content field, which is either a bare
// string or a list of typed blocks.
func normalizeContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		parts := make([]string, 0, len(blocks))
		for _, block := range blocks {
			switch block.Type {
			case "text":
				if t := strings.TrimSpace(block.Text); t != "" {
					parts = append(parts, t)
				}
			default:
				if t := strings.TrimSpace(block.Text); t != "" {
					parts = append(parts, t)
				} else if len(block.Content) > 0 {
					if nested := normalizeContent(block.Content); nested != "" {
						parts = append(parts, nested)
					}
				}
			}
		}
		return strings.Join(parts, "\n")
	}

	return strings.TrimSpace(string(raw))
}
