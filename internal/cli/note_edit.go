package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/notecards/internal/editor"
)

func newNoteEditCmd() *cobra.Command {
	var keepTmp bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			// Editing a summary would drop the body; the full note is required.
			cur, err := app.Store.FetchDetail(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("cannot edit: %w", err)
			}
			path, err := editor.PathForID(cur.ID)
			if err != nil {
				return err
			}
			initial := []byte(editor.ComposeContent(cur.Title, cur.Tags, cur.Body))
			out, changed, err := editor.OpenAt(path, initial)
			editor.Cleanup(path, keepTmp || app.Cfg.GetBool("editor.keep_tmp"))
			if err != nil {
				return err
			}
			d := editor.ToDraft(string(out))
			if !changed || d.Unchanged(cur) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
				return nil
			}
			if err := app.Store.Update(cmd.Context(), cur.ID, d); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cur.ID, d.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepTmp, "keep-tmp", false, "keep the editor temp file")
	return cmd
}
