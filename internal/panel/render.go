package panel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chatnav/chatnav/internal/textutil"
	"github.com/chatnav/chatnav/internal/transcript"
)

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorItemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	activeItemStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("84"))
	jumpItemStyle      = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("84"))
	renamedItemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("222"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	previewStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	turnHeaderStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	roleUserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	roleAssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	pendingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// renderCache memoizes the panel list. The list is rebuilt only when one of
// its inputs changes; it lives behind a pointer so the memo survives the
// value-copied View calls.
type renderCache struct {
	key  string
	view string
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading chatnav..."
	}
	var body string
	if m.screen == screenSessions {
		body = m.sessionsView()
	} else {
		body = m.navigatorView()
	}
	return m.headerView() + "\n" + body + "\n" + m.footerView()
}

func (m Model) bodyHeight() int { return max(1, m.height-3) }

func (m Model) transcriptView() int { return m.bodyHeight() }

func (m Model) listHeight() int { return max(1, m.bodyHeight()-1) }

func (m Model) panelWidth() int {
	if m.collapsed {
		return 0
	}
	w := m.cfg.PanelWidth
	if m.width > 0 && w > m.width/2 {
		w = m.width / 2
	}
	return max(12, w)
}

func (m Model) transcriptWidth() int {
	if m.collapsed {
		return max(20, m.width)
	}
	return max(20, m.width-m.panelWidth()-1)
}

func (m Model) headerView() string {
	title := "chatnav"
	if m.screen == screenNavigator {
		title += ": " + m.convID
	}
	return titleStyle.Render(textutil.Truncate(title, max(10, m.width)))
}

func (m Model) footerView() string {
	preview := ""
	if m.screen == screenNavigator {
		items := m.filteredItems()
		if len(items) > 0 {
			preview = items[min(m.cursor, len(items)-1)].FullText
		}
	}
	previewLine := previewStyle.Render(textutil.Truncate(preview, max(10, m.width-1)))

	statusLine := helpStyle.Render(m.helpLine())
	if m.status != "" {
		style := helpStyle
		if strings.HasPrefix(m.status, "Error: ") {
			style = errorStyle
		}
		statusLine = style.Render(textutil.Truncate(m.status, max(10, m.width-1)))
	}
	return previewLine + "\n" + statusLine
}

func (m Model) helpLine() string {
	if m.screen == screenSessions {
		return "enter open  j/k move  r reload  q quit"
	}
	if m.editingID != "" {
		return "enter save  esc cancel"
	}
	if m.searching {
		return "enter keep filter  esc clear"
	}
	return "enter jump  e rename  a summarize  / filter  t list  J/K scroll  r refresh  b back  q quit"
}

func (m Model) sessionsView() string {
	height := m.bodyHeight()
	if len(m.sessions) == 0 {
		hint := "no transcripts found"
		if m.cfg.TranscriptsDir != "" {
			hint += " in " + m.cfg.TranscriptsDir
		}
		return padLines([]string{dimStyle.Render(hint)}, height)
	}

	offset := listOffset(m.sessionCursor, len(m.sessions), height)
	lines := make([]string, 0, height)
	for i := offset; i < len(m.sessions) && len(lines) < height; i++ {
		entry := m.sessions[i]
		marker := "  "
		if i == m.sessionCursor {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s  %s", marker, entry.name, entry.modTime.Format("2006-01-02 15:04"))
		line = textutil.Truncate(line, max(10, m.width-1))
		if i == m.sessionCursor {
			line = cursorItemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return padLines(lines, height)
}

func (m Model) navigatorView() string {
	transcriptPane := padLines(m.layout.visibleLines(), m.transcriptView())
	if m.collapsed {
		return transcriptPane
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.panelView(), " ", transcriptPane)
}

func (m Model) panelView() string {
	width := m.panelWidth()
	search := m.searchInput.View()
	if !m.searching && m.searchTerm() == "" {
		search = dimStyle.Render("/ to filter")
	}
	body := lipgloss.NewStyle().Width(width).MaxWidth(width).Render(search + "\n" + m.panelList())
	return body
}

func (m Model) panelList() string {
	items := m.filteredItems()
	key := m.panelListKey(items)
	if key == m.cache.key {
		return m.cache.view
	}

	height := m.listHeight()
	offset := listOffset(m.cursor, len(items), height)
	lines := make([]string, 0, height)
	for i := offset; i < len(items) && len(lines) < height; i++ {
		lines = append(lines, m.panelLine(items[i], i))
	}
	view := padLines(lines, height)

	m.cache.key = key
	m.cache.view = view
	return view
}

func (m Model) panelLine(item transcript.Turn, i int) string {
	width := m.panelWidth()
	if item.ID == m.editingID {
		return m.renameInput.View()
	}

	marker := "  "
	if i == m.cursor {
		marker = "> "
	}
	suffix := ""
	if item.ID == m.summarizingID {
		suffix = " *"
	}
	_, renamed := m.overrides[item.ID]

	line := fmt.Sprintf("%s%d. %s%s", marker, item.Index, m.displayName(item), suffix)
	line = textutil.Truncate(line, width)

	switch {
	case item.ID == m.jumpTargetID:
		return jumpItemStyle.Render(line)
	case item.ID == m.nav.Active():
		return activeItemStyle.Render(line)
	case i == m.cursor:
		return cursorItemStyle.Render(line)
	case renamed:
		return renamedItemStyle.Render(line)
	}
	return line
}

// panelListKey captures every input the list rendering depends on.
func (m Model) panelListKey(items []transcript.Turn) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(m.panelWidth()))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(m.listHeight()))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(m.cursor))
	b.WriteByte('|')
	b.WriteString(m.nav.Active())
	b.WriteByte('|')
	b.WriteString(m.jumpTargetID)
	b.WriteByte('|')
	b.WriteString(m.editingID)
	b.WriteByte('|')
	b.WriteString(m.renameInput.View())
	b.WriteByte('|')
	b.WriteString(m.summarizingID)
	b.WriteByte('|')
	b.WriteString(m.searchTerm())
	for _, item := range items {
		b.WriteByte('\x1e')
		b.WriteString(item.ID)
		b.WriteByte(';')
		b.WriteString(m.displayName(item))
	}
	return b.String()
}

// listOffset keeps the cursor roughly centered in a window over total rows.
func listOffset(cursor, total, height int) int {
	if height <= 0 || total <= height {
		return 0
	}
	offset := cursor - height/2
	if offset < 0 {
		offset = 0
	}
	if offset > total-height {
		offset = total - height
	}
	return offset
}

// padLines joins lines and pads with blanks to exactly height rows.
func padLines(lines []string, height int) string {
	out := make([]string, height)
	copy(out, lines)
	return strings.Join(out, "\n")
}
