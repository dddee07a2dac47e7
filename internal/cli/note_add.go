package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/notecards/internal/editor"
	"github.com/mithrel/notecards/internal/util"
	"github.com/mithrel/notecards/pkg/api"
)

func newNoteAddCmd(flags *rootFlags) *cobra.Command {
	var tags []string
	var body string
	var keepTmp bool
	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create a note (opens $EDITOR when no title or body is given)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if len(tags) == 0 {
				tags = app.Cfg.GetStringSlice("default_tags")
			}
			title := joinArgs(args)

			var d api.Draft
			if title != "" || strings.TrimSpace(body) != "" {
				d = api.Draft{Title: editor.ResolveTitle(title, body), Tags: cleanTags(tags), Body: body}
			} else {
				path, err := editor.PathForID("")
				if err != nil {
					return err
				}
				initial := []byte(editor.ComposeContent("", tags, editor.NewNoteTemplate))
				out, changed, err := editor.OpenAt(path, initial)
				editor.Cleanup(path, keepTmp || app.Cfg.GetBool("editor.keep_tmp"))
				if err != nil {
					return err
				}
				if !changed || len(bytes.TrimSpace(out)) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No edits; note not created.")
					return nil
				}
				d = editor.ToDraft(string(out))
			}

			n, err := app.Store.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma-separated tags (default from config default_tags)")
	cmd.Flags().StringVarP(&body, "message", "m", "", "markdown body; skips the editor")
	cmd.Flags().BoolVar(&keepTmp, "keep-tmp", false, "keep the editor temp file")
	_ = cmd.RegisterFlagCompletionFunc("tags", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		app, err := loadApp(cmd, *flags)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer app.Close()
		if _, err := app.Store.Load(cmd.Context(), false); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return util.ScoreCompletions(toComplete, app.Store.Tags(), 20), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newNoteTagsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tags [input]",
		Short: "List known tags, best fuzzy matches for input first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if _, err := app.Store.Load(cmd.Context(), false); err != nil {
				return err
			}
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			for _, t := range util.ScoreCompletions(input, app.Store.Tags(), limit) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum matches to print (0 for all)")
	return cmd
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
