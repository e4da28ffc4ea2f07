// Package panel is the interactive navigator: a table-of-contents pane over a
// chat transcript with smooth jump-to-turn scrolling, per-turn renames, and
// gateway-backed AI naming. At most one of a jump, a rename edit, or a pending
// summary request is in flight at any time; transcript refreshes hold off
// while any of them is.
package panel

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chatnav/chatnav/internal/config"
	"github.com/chatnav/chatnav/internal/nav"
	"github.com/chatnav/chatnav/internal/renames"
	"github.com/chatnav/chatnav/internal/scroll"
	"github.com/chatnav/chatnav/internal/summarize"
	"github.com/chatnav/chatnav/internal/transcript"
	"github.com/chatnav/chatnav/internal/watch"
)

const frameInterval = 16 * time.Millisecond

type screen int

const (
	screenSessions screen = iota
	screenNavigator
)

type refreshMsg struct{}

// frameMsg drives one animation frame. gen pins it to the animation that
// scheduled it; a tick from a cancelled animation carries a stale gen and is
// dropped.
type frameMsg struct {
	gen int
}

type summaryResultMsg struct {
	turnID string
	name   string
	err    error
}

// Options wires the model's collaborators. Gateway and Watcher may be nil;
// summarization and auto-refresh are then disabled.
type Options struct {
	Config  *config.Config
	Store   *renames.Store
	Gateway *summarize.Client
	Watcher *watch.Watcher
}

type Model struct {
	cfg     *config.Config
	store   *renames.Store
	gateway *summarize.Client
	watcher *watch.Watcher

	screen screen

	sessions      []sessionEntry
	sessionCursor int

	source *transcript.FileSource
	convID string

	nav    *nav.State
	layout *transcriptLayout
	anim   *scroll.Animator

	overrides map[string]string
	collapsed bool

	cursor       int
	jumpTargetID string

	searchInput   textinput.Model
	searching     bool
	renameInput   textinput.Model
	editingID     string
	summarizingID string

	lastTrack time.Time

	cache *renderCache

	width  int
	height int
	status string
}

func NewModel(opts Options) Model {
	cfg := opts.Config
	m := Model{
		cfg:       cfg,
		store:     opts.Store,
		gateway:   opts.Gateway,
		watcher:   opts.Watcher,
		nav:       nav.NewState(),
		layout:    newTranscriptLayout(cfg.ActivationOffset),
		anim:      scroll.NewAnimator(cfg.ScrollDuration()),
		overrides: map[string]string{},
		cache:     &renderCache{},
	}

	si := textinput.New()
	si.Prompt = "/"
	si.Placeholder = "filter"
	m.searchInput = si

	if opts.Store != nil {
		if collapsed, err := opts.Store.Collapsed(context.Background()); err == nil {
			m.collapsed = collapsed
		}
	}
	m.reloadSessions()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return waitForChangeCmd(m.watcher.C)
	}
	return nil
}

// waitForChangeCmd blocks on the watcher's coalesced signal and turns it into
// a refresh message. It is re-armed after every refreshMsg.
func waitForChangeCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return refreshMsg{}
	}
}

func frameTick(gen int) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

// Close releases the model's long-lived resources after the program exits.
func (m Model) Close() error {
	var first error
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			first = err
		}
	}
	if m.store != nil {
		if err := m.store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		return m, nil
	case refreshMsg:
		m.refresh()
		if m.watcher != nil {
			return m, waitForChangeCmd(m.watcher.C)
		}
		return m, nil
	case frameMsg:
		return m.handleFrame(msg)
	case summaryResultMsg:
		m.applySummaryResult(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleFrame(msg frameMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.anim.Generation() || !m.anim.Active() {
		return m, nil
	}
	if m.anim.Step(time.Now()) {
		m.finishScroll()
		return m, nil
	}
	return m, frameTick(msg.gen)
}

// finishScroll commits the jump target as the active turn once the animation
// has landed.
func (m *Model) finishScroll() {
	if m.jumpTargetID != "" {
		m.nav.SetActive(m.jumpTargetID)
		m.jumpTargetID = ""
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.screen == screenSessions {
		return m.handleSessionsKey(msg)
	}
	return m.handleNavigatorKey(msg)
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
	case "down", "j":
		if m.sessionCursor < len(m.sessions)-1 {
			m.sessionCursor++
		}
	case "r":
		m.reloadSessions()
	case "enter":
		if len(m.sessions) > 0 {
			m.openSession(m.sessions[m.sessionCursor])
		}
	}
	return m, nil
}

func (m Model) handleNavigatorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingID != "" {
		switch msg.Type {
		case tea.KeyEnter:
			m.confirmRename()
			return m, nil
		case tea.KeyEsc:
			m.cancelRename()
			return m, nil
		}
		var cmd tea.Cmd
		m.renameInput, cmd = m.renameInput.Update(msg)
		return m, cmd
	}

	if m.searching {
		switch msg.Type {
		case tea.KeyEnter:
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case tea.KeyEsc:
			m.searchInput.SetValue("")
			m.searching = false
			m.searchInput.Blur()
			m.clampCursor()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.clampCursor()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "b":
		m.closeSession()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if n := len(m.filteredItems()); m.cursor < n-1 {
			m.cursor++
		}
	case "enter":
		return m.activateCursor()
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "e":
		m.startRename()
		return m, textinput.Blink
	case "a":
		return m.startSummarize()
	case "t":
		m.toggleCollapsed()
	case "r":
		m.refresh()
	case "J", "pgdown":
		m.userScroll(float64(m.transcriptView() - 1))
	case "K", "pgup":
		m.userScroll(-float64(m.transcriptView() - 1))
	case "ctrl+d":
		m.userScroll(float64(m.transcriptView()) / 2)
	case "ctrl+u":
		m.userScroll(-float64(m.transcriptView()) / 2)
	case "g":
		m.userScroll(-m.layout.Offset())
	case "G":
		m.userScroll(m.layout.MaxOffset() - m.layout.Offset())
	}
	return m, nil
}

func (m Model) activateCursor() (tea.Model, tea.Cmd) {
	items := m.filteredItems()
	if len(items) == 0 {
		return m, nil
	}
	item := items[min(m.cursor, len(items)-1)]
	return m, m.startScroll(item.ID)
}

// startScroll begins the animated jump to a turn. Starting while another jump
// is in flight re-targets: the previous animation's generation dies and its
// pending ticks become no-ops.
func (m *Model) startScroll(id string) tea.Cmd {
	if _, ok := m.layout.TargetOffset(id); !ok {
		// The list can outlive the layout across a reload; one rescan
		// re-syncs them before giving up on the id.
		m.rescan()
		if _, ok := m.layout.TargetOffset(id); !ok {
			m.status = "turn is no longer present"
			return nil
		}
	}
	m.jumpTargetID = id
	gen := m.anim.Start(id, m.layout, time.Now())
	return frameTick(gen)
}

// userScroll is a manual viewport move. It takes over from any running jump
// and feeds the throttled scroll-position active tracking.
func (m *Model) userScroll(delta float64) {
	if m.anim.Active() {
		m.anim.Cancel()
		m.jumpTargetID = ""
	}
	m.layout.scrollBy(delta)
	m.trackActive()
}

func (m *Model) trackActive() {
	now := time.Now()
	if now.Sub(m.lastTrack) < m.cfg.Throttle() {
		return
	}
	m.lastTrack = now
	if id := m.layout.activeAt(m.cfg.ActivationOffset); id != "" {
		m.nav.SetActive(id)
	}
}

func (m Model) startSummarize() (tea.Model, tea.Cmd) {
	if m.gateway == nil {
		m.status = "summarization is not configured"
		return m, nil
	}
	if m.summarizingID != "" {
		// One request at a time; the key is ignored until it settles.
		return m, nil
	}
	items := m.filteredItems()
	if len(items) == 0 {
		return m, nil
	}
	item := items[min(m.cursor, len(items)-1)]
	if item.Node == nil {
		return m, nil
	}
	m.summarizingID = item.ID
	m.status = "summarizing #" + strconv.Itoa(item.Index)
	return m, summarizeCmd(m.gateway, item)
}

func summarizeCmd(client *summarize.Client, item transcript.Turn) tea.Cmd {
	id := item.ID
	user := item.Node.UserText()
	assistant := item.Node.AssistantText()
	return func() tea.Msg {
		name, err := client.Summarize(context.Background(), user, assistant)
		return summaryResultMsg{turnID: id, name: name, err: err}
	}
}

func (m *Model) applySummaryResult(msg summaryResultMsg) {
	if msg.turnID != m.summarizingID {
		return
	}
	m.summarizingID = ""
	if msg.err != nil {
		m.status = "Error: " + msg.err.Error()
		return
	}
	m.status = ""
	name := capRunes(strings.TrimSpace(msg.name), m.cfg.RenameMaxRunes)
	if name == "" {
		// Nothing usable came back; the existing name stands.
		return
	}
	m.setOverride(msg.turnID, name)
}

func (m *Model) startRename() {
	items := m.filteredItems()
	if len(items) == 0 {
		return
	}
	item := items[min(m.cursor, len(items)-1)]
	m.editingID = item.ID

	ti := textinput.New()
	ti.CharLimit = m.cfg.RenameMaxRunes
	ti.Width = max(8, m.panelWidth()-4)
	ti.SetValue(m.displayName(item))
	ti.Focus()
	m.renameInput = ti
}

// confirmRename persists the edited name. A name that trims to empty clears
// the override instead, falling back to the derived summary.
func (m *Model) confirmRename() {
	id := m.editingID
	m.editingID = ""
	name := capRunes(strings.TrimSpace(m.renameInput.Value()), m.cfg.RenameMaxRunes)
	m.setOverride(id, name)
}

func (m *Model) cancelRename() {
	m.editingID = ""
}

func (m *Model) setOverride(id, name string) {
	if err := m.store.Save(context.Background(), m.convID, id, name); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	if name == "" {
		delete(m.overrides, id)
	} else {
		m.overrides[id] = name
	}
}

func (m *Model) toggleCollapsed() {
	m.collapsed = !m.collapsed
	if err := m.store.SetCollapsed(context.Background(), m.collapsed); err != nil {
		m.status = "Error: " + err.Error()
	}
	m.relayout()
}

// refresh re-reads the transcript and rebuilds the list and layout. It is
// suppressed while a jump, a rename edit, or a summary request is in flight;
// the conversation identity check and rename reload still run so a swapped
// transcript never shows another conversation's names.
func (m *Model) refresh() {
	if m.screen != screenNavigator || m.source == nil {
		m.reloadSessions()
		return
	}
	if conv := transcript.ConversationID(m.source.Path()); conv != m.convID {
		m.convID = conv
		m.loadOverrides()
	}
	if m.anim.Active() || m.editingID != "" || m.summarizingID != "" {
		return
	}
	if err := m.source.Reload(); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.rescan()
}

func (m *Model) rescan() {
	items := transcript.Scan(m.source, transcript.ScanOptions{
		SummaryMax:  m.cfg.SummaryMaxRunes,
		FullTextMax: m.cfg.FullTextMaxRunes,
	})
	m.nav.SetItems(items)
	m.layout.rebuild(items)
	m.clampCursor()
}

func (m *Model) loadOverrides() {
	overrides, err := m.store.Load(context.Background(), m.convID)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.overrides = map[string]string{}
		return
	}
	m.overrides = overrides
}

func (m *Model) openSession(entry sessionEntry) {
	src := transcript.NewFileSource(entry.path)
	if err := src.Reload(); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.source = src
	m.convID = transcript.ConversationID(entry.path)
	m.screen = screenNavigator
	m.cursor = 0
	m.searching = false
	m.searchInput.SetValue("")
	m.editingID = ""
	m.summarizingID = ""
	m.jumpTargetID = ""
	m.anim.Cancel()
	m.nav = nav.NewState()
	m.layout = newTranscriptLayout(m.cfg.ActivationOffset)
	m.relayout()
	m.loadOverrides()
	m.status = ""
	m.rescan()
}

// OpenPath jumps straight into the navigator for one transcript file.
func (m *Model) OpenPath(path string) {
	m.openSession(sessionEntry{name: transcript.ConversationID(path), path: path})
}

func (m *Model) closeSession() {
	m.anim.Cancel()
	m.jumpTargetID = ""
	m.editingID = ""
	m.summarizingID = ""
	m.screen = screenSessions
	m.source = nil
	m.status = ""
	m.reloadSessions()
}

func (m *Model) relayout() {
	m.layout.setSize(m.transcriptWidth(), m.transcriptView())
}

func (m *Model) clampCursor() {
	n := len(m.filteredItems())
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) searchTerm() string {
	return strings.TrimSpace(m.searchInput.Value())
}

func (m Model) filteredItems() []transcript.Turn {
	return filterTurns(m.nav.Items(), m.overrides, m.searchTerm())
}

func (m Model) displayName(item transcript.Turn) string {
	if name, ok := m.overrides[item.ID]; ok && name != "" {
		return name
	}
	return item.Summary
}

// filterTurns keeps turns whose display name or full user text contains the
// term, case-insensitively, preserving transcript order. An empty term keeps
// everything.
func filterTurns(items []transcript.Turn, overrides map[string]string, term string) []transcript.Turn {
	if term == "" {
		return items
	}
	needle := strings.ToLower(term)
	out := make([]transcript.Turn, 0, len(items))
	for _, item := range items {
		name := overrides[item.ID]
		if name == "" {
			name = item.Summary
		}
		if strings.Contains(strings.ToLower(name), needle) ||
			strings.Contains(strings.ToLower(item.FullText), needle) {
			out = append(out, item)
		}
	}
	return out
}

func capRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
