package present

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/mithrel/notecards/internal/present/format"
	"github.com/mithrel/notecards/internal/present/tui"
	"github.com/mithrel/notecards/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeTUI
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Style      format.Style
	// TUI only
	Query       string
	DefaultTags []string
	KeepTmp     bool
}

// ParseMode parses a string like "plain", "pretty", "json", "ndjson", "tui".
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "tui":
		return ModeTUI, true
	default:
		return ModePlain, false
	}
}

// Pageable reports whether output in mode m should go through a pager.
func (m Mode) Pageable() bool { return m == ModePlain || m == ModePretty }

// RenderNotes renders a list of notes according to options.
// ModeTUI needs the store and is handled by Browse.
func RenderNotes(w io.Writer, notes []api.Note, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONNotes(w, notes, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONNotes(w, notes)
	case ModePretty:
		return format.WritePrettyNotes(w, notes, opts.Style)
	case ModeTUI:
		return errors.New("tui output needs the store; use Browse")
	default:
		return format.WritePlainNotes(w, notes, opts.Headers)
	}
}

// RenderNote renders a single note according to options.
func RenderNote(w io.Writer, n api.Note, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONNote(w, n, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONNotes(w, []api.Note{n})
	case ModePretty, ModeTUI:
		return format.WritePrettyNote(w, n, opts.Style)
	default:
		return format.WritePlainNote(w, n)
	}
}

// Browse opens the interactive browser over st.
func Browse(ctx context.Context, st tui.Store, opts Options) error {
	return tui.Run(ctx, st, tui.Options{
		Headers:     opts.Headers,
		Style:       opts.Style,
		DefaultTags: opts.DefaultTags,
		KeepTmp:     opts.KeepTmp,
		Query:       opts.Query,
	})
}
