package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/notecards/internal/present"
)

func newTUICmd() *cobra.Command {
	var query string
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse, search and edit notes interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := presentOptions(cmd, app, "tui", !noHeaders)
			if err != nil {
				return err
			}
			opts.Query = query
			app.QuietLogs()
			return present.Browse(cmd.Context(), app.Store, opts)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "start with this search")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "hide column headers")
	return cmd
}
