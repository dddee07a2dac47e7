package tui

import "github.com/mithrel/notecards/pkg/api"

type viewKind int

const (
	viewIdle viewKind = iota
	viewEditing
	viewViewing
)

// viewState is the single source of truth for what the browser is doing.
// Editing with an empty id is a new note; base is the detail being edited
// and stays nil until it has been fetched. initial is the buffer a new note
// starts from, so an untouched template is not saved.
type viewState struct {
	kind    viewKind
	id      string
	base    *api.Note
	initial string
}

func idle() viewState { return viewState{kind: viewIdle} }

func editing(id string, base *api.Note) viewState {
	return viewState{kind: viewEditing, id: id, base: base}
}

func composing(initial string) viewState {
	return viewState{kind: viewEditing, initial: initial}
}

func viewing(id string) viewState { return viewState{kind: viewViewing, id: id} }

func (s viewState) is(k viewKind) bool { return s.kind == k }

func (s viewState) String() string {
	switch s.kind {
	case viewEditing:
		if s.id == "" {
			return "editing(new)"
		}
		return "editing(" + s.id + ")"
	case viewViewing:
		return "viewing(" + s.id + ")"
	default:
		return "idle"
	}
}
