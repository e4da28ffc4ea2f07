package transcript

import (
	"strings"

	"github.com/google/uuid"

	"github.com/chatnav/chatnav/internal/textutil"
)

// ScanOptions sets the label budgets for scanned turns.
type ScanOptions struct {
	SummaryMax  int
	FullTextMax int
}

// Scan walks the source and produces the ordered turn list. Turns without
// user text are skipped and do not consume an index; Index therefore counts
// 1..n over included turns only. Turns lacking a stable host id get a freshly
// generated one, so callers must tolerate such ids changing across scans.
// A transcript with no turns yields an empty slice, not an error.
func Scan(src Source, opts ScanOptions) []Turn {
	if src == nil {
		return nil
	}
	nodes := src.Turns()
	items := make([]Turn, 0, len(nodes))
	index := 0
	for _, node := range nodes {
		user := strings.TrimSpace(node.UserText())
		if user == "" {
			continue
		}
		index++
		id := node.StableID()
		if id == "" {
			id = "turn-" + uuid.NewString()
		}
		items = append(items, Turn{
			ID:       id,
			Index:    index,
			Summary:  textutil.Summary(user, opts.SummaryMax),
			FullText: textutil.FullText(user, opts.FullTextMax),
			Node:     node,
		})
	}
	return items
}
