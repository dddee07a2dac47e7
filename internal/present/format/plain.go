package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mithrel/notecards/pkg/api"
)

var headerLine = "ID\tTITLE\tTAGS\tCREATED\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func created(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func WritePlainNotes(w io.Writer, notes []api.Note, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, n := range notes {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\n",
			esc(n.ID), esc(n.Title), esc(joinTags(n.Tags)), created(n.CreatedAt))
		_, _ = io.WriteString(tw, line)
	}
	return tw.Flush()
}

// WritePlainNote prints a header block followed by the raw markdown body.
func WritePlainNote(w io.Writer, n api.Note) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", n.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", n.Title)
	fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(n.Tags, ", "))
	fmt.Fprintf(tw, "Created:\t%s\n", created(n.CreatedAt))
	if err := tw.Flush(); err != nil {
		return err
	}
	body := strings.TrimSpace(n.Body)
	if body == "" {
		body = n.Excerpt
	}
	if body == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%s\n", body)
	return err
}
