package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/notecards/internal/editor"
	"github.com/mithrel/notecards/pkg/api"
)

// loadedMsg conveys the result of (re)loading the note list.
type loadedMsg struct {
	notes []api.Note
	err   error
	dur   time.Duration
}

// detailMsg conveys the result of fetching a full note, for viewing or editing.
type detailMsg struct {
	id      string
	note    api.Note
	forEdit bool
	err     error
	dur     time.Duration
}

// editorDoneMsg is sent when the external editor exits.
type editorDoneMsg struct {
	path string
	err  error
}

// savedMsg conveys the outcome of a create or update.
type savedMsg struct {
	id    string
	title string
	err   error
	dur   time.Duration
}

// deletedMsg conveys the outcome of a delete operation back to Update.
type deletedMsg struct {
	id  string
	err error
	dur time.Duration
}

type copiedMsg struct {
	id  string
	err error
}

func loadCmd(ctx context.Context, st Store, force bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		notes, err := st.Load(ctx, force)
		return loadedMsg{notes: notes, err: err, dur: time.Since(start)}
	}
}

func detailCmd(ctx context.Context, st Store, id string, forEdit bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		n, err := st.FetchDetail(ctx, id)
		return detailMsg{id: id, note: n, forEdit: forEdit, err: err, dur: time.Since(start)}
	}
}

// saveCmd creates a note when id is empty, otherwise replaces note id.
func saveCmd(ctx context.Context, st Store, id string, d api.Draft) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		if id == "" {
			n, err := st.Create(ctx, d)
			return savedMsg{id: n.ID, title: d.Title, err: err, dur: time.Since(start)}
		}
		err := st.Update(ctx, id, d)
		return savedMsg{id: id, title: d.Title, err: err, dur: time.Since(start)}
	}
}

func deleteCmd(ctx context.Context, st Store, id string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := st.Remove(ctx, id)
		return deletedMsg{id: id, err: err, dur: time.Since(start)}
	}
}

// copyCmd copies the body of note id; summaries lack bodies, so it fetches the detail first.
func copyCmd(ctx context.Context, st Store, id string, write func(string) error) tea.Cmd {
	return func() tea.Msg {
		n, err := st.FetchDetail(ctx, id)
		if err != nil {
			return copiedMsg{id: id, err: err}
		}
		if err := write(n.Body); err != nil {
			return copiedMsg{id: id, err: fmt.Errorf("clipboard: %w", err)}
		}
		return copiedMsg{id: id}
	}
}

// editorCmd writes initial content to path and suspends the program while the editor runs.
func editorCmd(path string, initial []byte) tea.Cmd {
	if err := editor.PrepareAt(path, initial); err != nil {
		return func() tea.Msg { return editorDoneMsg{path: path, err: err} }
	}
	c, err := editor.Command(path)
	if err != nil {
		return func() tea.Msg { return editorDoneMsg{path: path, err: err} }
	}
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{path: path, err: err}
	})
}
