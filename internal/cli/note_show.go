package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNoteShowCmd() *cobra.Command {
	var outputMode string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := presentOptions(cmd, app, outputMode, true)
			if err != nil {
				return err
			}
			id := args[0]
			n, err := app.Store.FetchDetail(cmd.Context(), id)
			if err != nil {
				// Read-only view: a summary from the list beats nothing.
				if _, lerr := app.Store.Load(cmd.Context(), false); lerr != nil {
					return err
				}
				cached, ok := app.Store.Cached(id)
				if !ok {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; showing summary\n", err)
				n = cached
			}
			return renderNote(cmd, n, opts)
		},
	}
	registerOutputFlag(cmd, &outputMode, "plain", "pretty", "json", "ndjson")
	return cmd
}
