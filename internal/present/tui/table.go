package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/mithrel/notecards/internal/editor"
	"github.com/mithrel/notecards/internal/present/format"
	"github.com/mithrel/notecards/internal/store"
	"github.com/mithrel/notecards/pkg/api"
)

// Store is what the browser needs from the note store.
type Store interface {
	Load(ctx context.Context, force bool) ([]api.Note, error)
	FetchDetail(ctx context.Context, id string) (api.Note, error)
	Create(ctx context.Context, d api.Draft) (api.Note, error)
	Update(ctx context.Context, id string, d api.Draft) error
	Remove(ctx context.Context, id string) error
	Cached(id string) (api.Note, bool)
}

type Options struct {
	Headers     bool
	Style       format.Style
	DefaultTags []string
	KeepTmp     bool
	Query       string
}

// Run opens the interactive browser and blocks until the user quits.
func Run(ctx context.Context, st Store, opts Options) error {
	m := newModel(ctx, st, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type model struct {
	ctx   context.Context
	store Store
	opts  Options

	all     []api.Note
	visible []api.Note
	loaded  bool

	state   viewState
	modal   *noteModal
	confirm *api.Note

	table     table.Model
	search    textinput.Model
	searching bool

	width        int
	height       int
	status       string
	lastDuration time.Duration

	writeClipboard func(string) error
}

func newModel(ctx context.Context, st Store, opts Options) model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search title or tag"
	ti.SetValue(opts.Query)
	m := model{
		ctx:            ctx,
		store:          st,
		opts:           opts,
		state:          idle(),
		search:         ti,
		status:         "Loading…",
		writeClipboard: clipboard.WriteAll,
	}
	m.initTable()
	return m
}

func (m *model) initTable() {
	cols := m.columnsFor(m.opts.Headers, 12, 40, 20, 16)
	m.table = table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(10))
	m.updateRows()
	m.applyStyles()
}

// applyFilter recomputes the visible rows from the cached list and the query.
func (m *model) applyFilter() {
	m.visible = store.Filter(m.all, m.search.Value())
	m.updateRows()
	if c := m.table.Cursor(); c >= len(m.visible) {
		m.table.SetCursor(max(0, len(m.visible)-1))
	}
}

func (m *model) updateRows() {
	rows := make([]table.Row, 0, len(m.visible))
	for _, n := range m.visible {
		created := "-"
		if !n.CreatedAt.IsZero() {
			created = n.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{n.ID, n.Title, joinTags(n.Tags), created})
	}
	m.table.SetRows(rows)
}

func (m model) selected() (api.Note, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return api.Note{}, false
	}
	return m.visible[idx], true
}

func (m model) Init() tea.Cmd { return loadCmd(m.ctx, m.store, false) }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		if m.modal != nil {
			m.modal.resizeForTerm(msg.Width, msg.Height)
		}
		return m, nil
	case loadedMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Load failed: %v", msg.err)
			return m, nil
		}
		m.all = msg.notes
		m.loaded = true
		if strings.HasSuffix(m.status, "…") {
			m.status = ""
		}
		m.applyFilter()
		return m, nil
	case detailMsg:
		return m.onDetail(msg)
	case editorDoneMsg:
		return m.onEditorDone(msg)
	case savedMsg:
		m.state = idle()
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Save failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Saved %q", msg.title)
		return m, loadCmd(m.ctx, m.store, true)
	case deletedMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted %s", msg.id)
		return m, loadCmd(m.ctx, m.store, true)
	case copiedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.status = "Copied note body to clipboard"
		}
		return m, nil
	case tea.KeyMsg:
		return m.onKey(msg)
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm != nil {
		n := *m.confirm
		m.confirm = nil
		if msg.String() == "y" || msg.String() == "Y" {
			m.status = fmt.Sprintf("Deleting %s…", n.ID)
			m.state = idle()
			m.modal = nil
			return m, deleteCmd(m.ctx, m.store, n.ID)
		}
		m.status = "Delete cancelled"
		return m, nil
	}
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.applyFilter()
			return m, nil
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch m.state.kind {
	case viewEditing:
		// The editor owns the terminal; only stray keys arrive here.
		return m, nil
	case viewViewing:
		switch msg.String() {
		case "esc", "q":
			m.state = idle()
			m.modal = nil
			return m, nil
		case "e":
			return m.startEdit(m.state.id)
		case "d":
			n := m.modal.note
			if n.ID == "" {
				// detail still loading
				n = api.Note{ID: m.state.id, Title: m.state.id}
				if cached, ok := m.store.Cached(m.state.id); ok {
					n = cached
				}
			}
			return m.askDelete(n)
		case "y":
			return m, copyCmd(m.ctx, m.store, m.state.id, m.writeClipboard)
		}
		return m, m.modal.update(msg)
	}

	switch msg.String() {
	case "q", "ctrl+q":
		return m, tea.Quit
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.applyFilter()
		}
		return m, nil
	case "/":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "r":
		m.status = "Refreshing…"
		return m, loadCmd(m.ctx, m.store, true)
	case "n":
		content := editor.ComposeContent("", m.opts.DefaultTags, editor.NewNoteTemplate)
		m.state = composing(content)
		return m.openEditor("", content)
	}

	sel, ok := m.selected()
	switch msg.String() {
	case "enter":
		if !ok {
			return m, nil
		}
		m.state = viewing(sel.ID)
		m.modal = newNoteModal(m.opts.Style, m.width, m.height)
		return m, detailCmd(m.ctx, m.store, sel.ID, false)
	case "e":
		if !ok {
			return m, nil
		}
		return m.startEdit(sel.ID)
	case "d":
		if !ok {
			return m, nil
		}
		return m.askDelete(sel)
	case "y":
		if !ok {
			return m, nil
		}
		return m, copyCmd(m.ctx, m.store, sel.ID, m.writeClipboard)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) askDelete(n api.Note) (tea.Model, tea.Cmd) {
	m.confirm = &n
	m.status = fmt.Sprintf("Delete %q? (y/N)", n.Title)
	return m, nil
}

// startEdit requires the full note; edit is never offered on a bare summary.
func (m model) startEdit(id string) (tea.Model, tea.Cmd) {
	m.state = editing(id, nil)
	m.modal = nil
	m.status = "Loading note…"
	return m, detailCmd(m.ctx, m.store, id, true)
}

func (m model) onDetail(msg detailMsg) (tea.Model, tea.Cmd) {
	m.lastDuration = msg.dur
	if msg.forEdit {
		if !m.state.is(viewEditing) || m.state.id != msg.id {
			return m, nil
		}
		if msg.err != nil {
			m.state = idle()
			m.status = fmt.Sprintf("Cannot edit: %v", msg.err)
			return m, nil
		}
		n := msg.note
		m.state = editing(n.ID, &n)
		return m.openEditor(n.ID, editor.ComposeContent(n.Title, n.Tags, n.Body))
	}

	if !m.state.is(viewViewing) || m.state.id != msg.id || m.modal == nil {
		return m, nil
	}
	if msg.err != nil {
		if cached, ok := m.store.Cached(msg.id); ok {
			log.Warnf("tui: detail %s failed, showing summary: %v", msg.id, msg.err)
			m.modal.setNote(cached)
			m.status = fmt.Sprintf("Showing cached summary: %v", msg.err)
			return m, nil
		}
		m.state = idle()
		m.modal = nil
		m.status = fmt.Sprintf("Cannot load note: %v", msg.err)
		return m, nil
	}
	m.modal.setNote(msg.note)
	m.status = ""
	return m, nil
}

func (m model) openEditor(id, content string) (tea.Model, tea.Cmd) {
	path, err := editor.PathForID(id)
	if err != nil {
		m.state = idle()
		m.status = fmt.Sprintf("Editor failed: %v", err)
		return m, nil
	}
	m.status = "Editing…"
	return m, editorCmd(path, []byte(content))
}

func (m model) onEditorDone(msg editorDoneMsg) (tea.Model, tea.Cmd) {
	if !m.state.is(viewEditing) {
		return m, nil
	}
	defer editor.Cleanup(msg.path, m.opts.KeepTmp)
	if msg.err != nil {
		m.state = idle()
		m.status = fmt.Sprintf("Editor failed: %v", msg.err)
		return m, nil
	}
	b, err := os.ReadFile(msg.path)
	if err != nil {
		m.state = idle()
		m.status = fmt.Sprintf("Editor failed: %v", err)
		return m, nil
	}
	d := editor.ToDraft(string(b))
	if base := m.state.base; base != nil && d.Unchanged(*base) {
		m.state = idle()
		m.status = "No changes"
		return m, nil
	}
	if m.state.id == "" {
		if strings.TrimSpace(d.Body) == "" {
			m.state = idle()
			m.status = "Empty note discarded"
			return m, nil
		}
		if string(b) == m.state.initial || d.Fingerprint() == editor.ToDraft(m.state.initial).Fingerprint() {
			m.state = idle()
			m.status = "No edits; note not created"
			return m, nil
		}
	}
	m.status = "Saving…"
	return m, saveCmd(m.ctx, m.store, m.state.id, d)
}

func (m model) renderFooter() string {
	left := "↑/↓ move • / search • enter view • n new • e edit • d delete • r refresh • y copy • q quit"
	if m.state.is(viewViewing) {
		left = "↑/↓ scroll • e edit • d delete • y copy • esc close"
	}

	var right string
	if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDuration.Round(time.Millisecond))
		} else {
			right = m.status + " • "
		}
	}
	right += fmt.Sprintf("%d/%d notes ", len(m.visible), len(m.all))

	width := max(m.width, m.table.Width())
	space := width - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		space = 1
	}
	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	var b strings.Builder
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	if m.loaded && len(m.visible) == 0 {
		if len(m.all) == 0 {
			b.WriteString("(no notes, press n to write one)\n")
		} else {
			b.WriteString("(no notes match)\n")
		}
	} else {
		b.WriteString(m.table.View() + "\n")
	}
	b.WriteString(m.renderFooter() + "\n")

	if m.modal != nil && m.state.is(viewViewing) {
		return m.renderOverlay(m.modal.View() + "\n" + m.renderFooter())
	}
	return b.String()
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-2))
	m.table.SetWidth(m.width)
	avail := m.width - 4
	if avail < 40 {
		return
	}
	idW := 36
	if avail < idW+60 {
		idW = 8
	}
	createdW := 16
	rem := max(20, avail-idW-createdW)
	tagsW := max(8, rem/3)
	titleW := max(8, rem-tagsW)
	m.table.SetColumns(m.columnsFor(m.opts.Headers, idW, titleW, tagsW, createdW))
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.opts.Headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// columnsFor returns columns with or without titles based on headers flag.
func (m *model) columnsFor(headers bool, idW, titleW, tagsW, createdW int) []table.Column {
	if headers {
		return []table.Column{
			{Title: "ID", Width: idW},
			{Title: "Title", Width: titleW},
			{Title: "Tags", Width: tagsW},
			{Title: "Created", Width: createdW},
		}
	}
	return []table.Column{
		{Title: "", Width: idW},
		{Title: "", Width: titleW},
		{Title: "", Width: tagsW},
		{Title: "", Width: createdW},
	}
}
