package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/term"
)

func newNoteDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id...>",
		Short: "Delete notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			tty := isTerminal(cmd.InOrStdin())
			if len(args) > 1 {
				if err := confirmDelete(fmt.Sprintf("Delete %d notes?", len(args)), "This will permanently delete the selected notes.", yes, tty); err != nil {
					return err
				}
			} else if !yes && tty {
				if err := confirmDelete(fmt.Sprintf("Delete note %s?", args[0]), "This cannot be undone.", false, tty); err != nil {
					return err
				}
			}
			var errs error
			for _, id := range args {
				if err := app.Store.Remove(cmd.Context(), id); err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return errs
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func confirmDelete(title, desc string, yes, tty bool) error {
	if yes {
		return nil
	}
	if !tty {
		return fmt.Errorf("confirmation required; rerun with --yes")
	}
	confirm := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(desc).
				Value(&confirm),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("aborted")
	}
	return nil
}
