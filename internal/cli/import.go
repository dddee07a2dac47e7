package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/mithrel/notecards/internal/editor"
	"github.com/mithrel/notecards/pkg/api"
)

// importRecord accepts both draft files and exported notes.
type importRecord struct {
	Title        string   `json:"title"`
	Tags         []string `json:"tags"`
	Body         string   `json:"body"`
	BodyMarkdown string   `json:"body_markdown"`
	Content      string   `json:"content"`
}

func (r importRecord) draft() api.Draft {
	body := r.BodyMarkdown
	if body == "" {
		body = r.Body
	}
	if body == "" {
		body = r.Content
	}
	return api.Draft{Title: editor.ResolveTitle(r.Title, body), Tags: cleanTags(r.Tags), Body: body}
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Create notes from JSON (array or NDJSON; - reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			br := bufio.NewReader(in)
			// Peek first non-space byte to decide array vs NDJSON
			first, err := peekFirstNonSpace(br)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("%s: empty input", args[0])
				}
				return err
			}

			var records []importRecord
			dec := json.NewDecoder(br)
			if first == '[' {
				if err := dec.Decode(&records); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
			} else {
				for {
					var r importRecord
					if err := dec.Decode(&r); err != nil {
						if errors.Is(err, io.EOF) {
							break
						}
						return fmt.Errorf("%s: %w", args[0], err)
					}
					records = append(records, r)
				}
			}

			imported, skipped, failed := 0, 0, 0
			var errs error
			for _, r := range records {
				d := r.draft()
				if strings.TrimSpace(d.Body) == "" && d.Title == api.UntitledNote {
					skipped++
					continue
				}
				n, err := app.Store.Create(cmd.Context(), d)
				if err != nil {
					errs = multierr.Append(errs, fmt.Errorf("import %q: %w", d.Title, err))
					failed++
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
				imported++
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d\nSkipped: %d\nFailed: %d\n", imported, skipped, failed)
			return errs
		},
	}
	return cmd
}

func peekFirstNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\n' || b == '\r' || b == '\t' {
			continue
		}
		// put it back for the decoder
		if err := r.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
