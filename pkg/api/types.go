package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// UntitledNote is the placeholder title for notes without one.
const UntitledNote = "Untitled Note"

// ErrMissingID is returned when a decoded note carries no id.
var ErrMissingID = errors.New("note has no id")

// Note is a note as known to the Remote Notes Service.
// List responses may carry only a summary (no Body); detail responses carry everything.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft is the client-authored part of a note, sent on create and update.
type Draft struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Body  string   `json:"body_markdown"`
}

// wireNote accepts every field spelling the service revisions have used.
type wireNote struct {
	ID           json.RawMessage `json:"id"`
	Title        *string         `json:"title"`
	Body         *string         `json:"body"`
	BodyMarkdown *string         `json:"body_markdown"`
	Content      *string         `json:"content"`
	Excerpt      *string         `json:"excerpt"`
	Tags         json.RawMessage `json:"tags"`
	CreatedAt    *string         `json:"createdAt"`
	CreatedAtAlt *string         `json:"created_at"`
}

// UnmarshalJSON decodes a note leniently: tags that are absent or not an
// array become empty, ids may be strings or numbers, and the body may arrive
// under body, body_markdown or content. Only a missing id is an error.
func (n *Note) UnmarshalJSON(b []byte) error {
	var w wireNote
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	id, err := decodeID(w.ID)
	if err != nil {
		return err
	}
	out := Note{ID: id}
	if w.Title != nil {
		out.Title = *w.Title
	}
	switch {
	case w.Body != nil:
		out.Body = *w.Body
	case w.BodyMarkdown != nil:
		out.Body = *w.BodyMarkdown
	case w.Content != nil:
		out.Body = *w.Content
	}
	if w.Excerpt != nil {
		out.Excerpt = *w.Excerpt
	}
	out.Tags = decodeTags(w.Tags)
	ts := w.CreatedAt
	if ts == nil {
		ts = w.CreatedAtAlt
	}
	if ts != nil {
		out.CreatedAt = parseTime(*ts)
	}
	out.Normalize()
	*n = out
	return nil
}

// Normalize enforces the cache invariants: non-nil tags and a non-blank title.
func (n *Note) Normalize() {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if strings.TrimSpace(n.Title) == "" {
		n.Title = UntitledNote
	}
}

// Preview returns a short single-paragraph excerpt for list views.
func (n Note) Preview(limit int) string {
	s := n.Excerpt
	if s == "" {
		s = n.Body
	}
	return Excerpt(s, limit)
}

// Draft returns the editable fields of n.
func (n Note) Draft() Draft {
	return Draft{Title: n.Title, Body: n.Body, Tags: append([]string{}, n.Tags...)}
}

// MarshalJSON always emits a tags array, never null.
func (d Draft) MarshalJSON() ([]byte, error) {
	type plain Draft
	p := plain(d)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return json.Marshal(p)
}

// Excerpt strips a leading markdown heading marker and cuts s to limit runes.
func Excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#")
	s = strings.Join(strings.Fields(s), " ")
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ErrMissingID
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", ErrMissingID
		}
		return s, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", ErrMissingID
	}
	return num.String(), nil
}

func decodeTags(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}
