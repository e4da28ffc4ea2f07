package panel

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/chatnav/chatnav/internal/transcript"
)

// estimatedTurnHeight stands in for a turn's height until it is measured.
const estimatedTurnHeight = 5

// turnBlock is one turn's slot in the transcript layout. Height starts as an
// estimate; the real wrapped lines are computed lazily when the block nears
// the visible window, which shifts the tops of everything below it.
type turnBlock struct {
	id        string
	index     int
	user      string
	assistant string

	top      int
	height   int
	measured bool
	lines    []string
}

// transcriptLayout positions turn blocks in a vertical line space and
// implements scroll.Container over it. Offsets are line counts; fractional
// offsets occur mid-animation and floor to the first visible line.
type transcriptLayout struct {
	width  int
	view   int
	inset  int
	offset float64
	blocks []*turnBlock
	index  map[string]*turnBlock
}

func newTranscriptLayout(inset int) *transcriptLayout {
	return &transcriptLayout{inset: inset, index: map[string]*turnBlock{}}
}

// rebuild replaces all blocks from a fresh scan. The previous generation is
// discarded wholesale, measurements included.
func (l *transcriptLayout) rebuild(items []transcript.Turn) {
	l.blocks = make([]*turnBlock, 0, len(items))
	l.index = make(map[string]*turnBlock, len(items))
	for _, item := range items {
		b := &turnBlock{
			id:     item.ID,
			index:  item.Index,
			height: estimatedTurnHeight,
		}
		if item.Node != nil {
			b.user = item.Node.UserText()
			b.assistant = item.Node.AssistantText()
		}
		l.blocks = append(l.blocks, b)
		l.index[item.ID] = b
	}
	l.recalcTops()
	l.SetOffset(l.offset)
}

func (l *transcriptLayout) setSize(width, view int) {
	if width != l.width {
		// Wrap width changed; all measurements are void.
		for _, b := range l.blocks {
			b.measured = false
			b.lines = nil
			b.height = estimatedTurnHeight
		}
	}
	l.width = width
	l.view = view
	l.recalcTops()
	l.SetOffset(l.offset)
}

func (l *transcriptLayout) recalcTops() {
	top := 0
	for _, b := range l.blocks {
		b.top = top
		top += b.height
	}
}

func (l *transcriptLayout) totalHeight() int {
	if len(l.blocks) == 0 {
		return 0
	}
	last := l.blocks[len(l.blocks)-1]
	return last.top + last.height
}

func (l *transcriptLayout) measure(b *turnBlock) {
	width := max(20, l.width-2)
	lines := []string{turnHeaderStyle.Render(fmt.Sprintf("#%d you", b.index))}
	for _, line := range wrapLines(b.user, width) {
		lines = append(lines, roleUserStyle.Render("  "+line))
	}
	if strings.TrimSpace(b.assistant) != "" {
		lines = append(lines, turnHeaderStyle.Render("assistant"))
		for _, line := range wrapLines(b.assistant, width) {
			lines = append(lines, roleAssistantStyle.Render("  "+line))
		}
	}
	lines = append(lines, "")
	b.lines = lines
	b.height = len(lines)
	b.measured = true
}

// ensureMeasured measures every unmeasured block intersecting the window.
// Measuring changes heights and therefore tops, so the window is re-checked
// until it stabilizes.
func (l *transcriptLayout) ensureMeasured(from, to float64) {
	for pass := 0; pass < 8; pass++ {
		changed := false
		for _, b := range l.blocks {
			if b.measured {
				continue
			}
			if float64(b.top) > to || float64(b.top+b.height) < from {
				continue
			}
			l.measure(b)
			changed = true
		}
		if !changed {
			return
		}
		l.recalcTops()
	}
}

func (l *transcriptLayout) blockLines(b *turnBlock) []string {
	if b.measured {
		return b.lines
	}
	lines := make([]string, 0, b.height)
	lines = append(lines, turnHeaderStyle.Render(fmt.Sprintf("#%d you", b.index)))
	for len(lines) < b.height {
		lines = append(lines, pendingStyle.Render("  …"))
	}
	return lines
}

// visibleLines renders the current window.
func (l *transcriptLayout) visibleLines() []string {
	if len(l.blocks) == 0 || l.view <= 0 {
		return nil
	}
	start := int(l.offset)
	out := make([]string, 0, l.view)
	for _, b := range l.blocks {
		if b.top+b.height <= start {
			continue
		}
		for i, line := range l.blockLines(b) {
			pos := b.top + i
			if pos < start {
				continue
			}
			if pos >= start+l.view {
				return out
			}
			out = append(out, line)
		}
	}
	return out
}

// activeAt computes the scroll-position-derived active turn: the last block
// whose top edge is at or above the activation offset below the window top.
func (l *transcriptLayout) activeAt(activation int) string {
	threshold := int(l.offset) + activation
	active := ""
	for _, b := range l.blocks {
		if b.top <= threshold {
			active = b.id
		} else {
			break
		}
	}
	return active
}

func (l *transcriptLayout) scrollBy(delta float64) {
	l.SetOffset(l.offset + delta)
}

// Offset implements scroll.Container.
func (l *transcriptLayout) Offset() float64 { return l.offset }

// SetOffset implements scroll.Container. Moving the window lazily measures
// the content it now covers, which is what makes mid-animation re-targeting
// necessary in the first place.
func (l *transcriptLayout) SetOffset(v float64) {
	if v < 0 {
		v = 0
	}
	if max := l.MaxOffset(); v > max {
		v = max
	}
	l.offset = v
	l.ensureMeasured(v, v+float64(l.view))
}

// TargetOffset implements scroll.Container: the offset aligning the block's
// top edge with the window top minus the inset, from its current position.
func (l *transcriptLayout) TargetOffset(id string) (float64, bool) {
	b, ok := l.index[id]
	if !ok {
		return 0, false
	}
	offset := float64(b.top - l.inset)
	if offset < 0 {
		offset = 0
	}
	return offset, true
}

// MaxOffset implements scroll.Container.
func (l *transcriptLayout) MaxOffset() float64 {
	max := float64(l.totalHeight() - l.view)
	if max < 0 {
		return 0
	}
	return max
}

func wrapLines(text string, width int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	wrapped := strings.ReplaceAll(wordwrap.String(trimmed, width), "\r", "")
	return strings.Split(wrapped, "\n")
}
