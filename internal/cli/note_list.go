package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/notecards/internal/present"
	"github.com/mithrel/notecards/internal/store"
)

func newNoteListCmd() *cobra.Command {
	var outputMode string
	var noHeaders bool
	var refresh bool
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, outputMode, !noHeaders, refresh, query)
		},
	}
	registerOutputFlag(cmd, &outputMode, "plain", "pretty", "json", "ndjson", "tui")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "hide column headers (plain/tui)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached list")
	cmd.Flags().StringVarP(&query, "query", "q", "", "only notes whose title or tags contain this text")
	return cmd
}

func newNoteSearchCmd() *cobra.Command {
	var outputMode string
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find notes by title or tag (case-insensitive substring)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, outputMode, !noHeaders, false, joinArgs(args))
		},
	}
	registerOutputFlag(cmd, &outputMode, "plain", "pretty", "json", "ndjson", "tui")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "hide column headers (plain/tui)")
	return cmd
}

func runList(cmd *cobra.Command, outputMode string, headers, refresh bool, query string) error {
	app := getApp(cmd)
	opts, err := presentOptions(cmd, app, outputMode, headers)
	if err != nil {
		return err
	}
	if opts.Mode == present.ModeTUI {
		opts.Query = query
		app.QuietLogs()
		return present.Browse(cmd.Context(), app.Store, opts)
	}
	notes, err := app.Store.Load(cmd.Context(), refresh)
	if err != nil {
		return err
	}
	return renderNotes(cmd, store.Filter(notes, query), opts)
}
