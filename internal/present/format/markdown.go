package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/notecards/pkg/api"
)

// CardPreviewLen is how much of a body a list card shows.
const CardPreviewLen = 100

// Style selects the glamour theme and wrap width.
type Style struct {
	Name     string
	WordWrap int
}

func (s Style) renderer() (*glamour.TermRenderer, error) {
	name := s.Name
	if name == "" {
		name = "dracula"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(name)}
	if s.WordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(s.WordWrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r, nil
}

// Render turns markdown into terminal output.
func (s Style) Render(md string) (string, error) {
	r, err := s.renderer()
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// NoteMarkdown is the markdown shown for a single note.
func NoteMarkdown(n api.Note) string {
	body := strings.TrimSpace(n.Body)
	if body == "" {
		body = n.Excerpt
	}
	return fmt.Sprintf(`# %s

> **ID:** %s | **Created:** %s
>
> **Tags:** %s

---

%s
`, n.Title, n.ID, created(n.CreatedAt), tagList(n.Tags), body)
}

// CardsMarkdown lays notes out as cards: title, tags, short preview.
func CardsMarkdown(notes []api.Note) string {
	if len(notes) == 0 {
		return "_No notes._\n"
	}
	var b strings.Builder
	for i, n := range notes {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", n.Title)
		fmt.Fprintf(&b, "`%s` %s\n\n", n.ID, tagList(n.Tags))
		if p := n.Preview(CardPreviewLen); p != "" {
			b.WriteString(p + "\n")
		}
	}
	return b.String()
}

func tagList(tags []string) string {
	if len(tags) == 0 {
		return "_none_"
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "`#" + t + "`"
	}
	return strings.Join(out, " ")
}

// WritePrettyNote renders a single note with markdown formatting using glamour.
func WritePrettyNote(w io.Writer, n api.Note, s Style) error {
	out, err := s.Render(NoteMarkdown(n))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func WritePrettyNotes(w io.Writer, notes []api.Note, s Style) error {
	out, err := s.Render(CardsMarkdown(notes))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
