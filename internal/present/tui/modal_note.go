package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/notecards/internal/present/format"
	"github.com/mithrel/notecards/pkg/api"
)

// noteModal is a foreground modal showing the full rendered note
// using Glamour inside a scrollable viewport.
type noteModal struct {
	note    api.Note
	style   format.Style
	vp      viewport.Model
	width   int
	height  int
	padX    int
	padY    int
	box     lipgloss.Style
	content string
}

func newNoteModal(style format.Style, termW, termH int) *noteModal {
	m := &noteModal{style: style, padX: 2, padY: 1}
	m.resizeForTerm(termW, termH)
	m.setContent("Loading…")
	return m
}

func (m *noteModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	// 60% width, or nearly full width if terminal is small (<80 cols)
	w := int(float64(termW) * 0.6)
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(32, termW-2)
	}
	h := int(float64(termH) * 0.7)
	if termH < 20 {
		h = termH - 2
	}
	if h < 10 {
		h = max(8, termH-1)
	}
	m.width, m.height = w, h
	m.box = lipgloss.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	innerW := max(10, w-2-m.padX*2) // borders + padding
	innerH := max(5, h-2-m.padY*2)
	if m.vp.Width == 0 {
		m.vp = viewport.New(innerW, innerH)
	} else {
		m.vp.Width = innerW
		m.vp.Height = innerH
	}
	if m.note.ID != "" {
		m.setNote(m.note)
		return
	}
	m.vp.SetContent(m.content)
}

// setNote renders n with the shared pretty renderer, wrapped to the viewport.
func (m *noteModal) setNote(n api.Note) {
	m.note = n
	st := m.style
	st.WordWrap = m.vp.Width
	out, err := st.Render(format.NoteMarkdown(n))
	if err != nil {
		out = format.NoteMarkdown(n)
	}
	m.setContent(out)
}

func (m *noteModal) setContent(s string) {
	m.content = s
	m.vp.SetContent(s)
	m.vp.GotoTop()
}

func (m *noteModal) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return cmd
}

func (m *noteModal) View() string { return m.box.Render(m.vp.View()) }
