package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/notecards/internal/present"
	"github.com/mithrel/notecards/internal/present/format"
	"github.com/mithrel/notecards/internal/wire"
)

// newNoteCmd defines the parent "note" command.
func newNoteCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Work with notes",
	}

	cmd.AddCommand(newNoteListCmd())
	cmd.AddCommand(newNoteSearchCmd())
	cmd.AddCommand(newNoteShowCmd())
	cmd.AddCommand(newNoteAddCmd(flags))
	cmd.AddCommand(newNoteEditCmd())
	cmd.AddCommand(newNoteDeleteCmd())
	cmd.AddCommand(newNoteTagsCmd())
	cmd.AddCommand(newImportCmd())

	return cmd
}

// presentOptions builds presenter options from the --output and --indent flags, falling back to config.
func presentOptions(cmd *cobra.Command, app *wire.App, outputMode string, headers bool) (present.Options, error) {
	if strings.TrimSpace(outputMode) == "" {
		outputMode = app.Cfg.GetString("output")
	}
	mode, ok := present.ParseMode(outputMode)
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", outputMode)
	}
	indent := app.Cfg.GetBool("json_indent")
	if f := cmd.Flags().Lookup("indent"); f != nil && f.Changed {
		indent, _ = cmd.Flags().GetBool("indent")
	}
	return present.Options{
		Mode:       mode,
		JSONIndent: indent,
		Headers:    headers,
		Style: format.Style{
			Name:     app.Cfg.GetString("render.style"),
			WordWrap: app.Cfg.GetInt("render.word_wrap"),
		},
		DefaultTags: app.Cfg.GetStringSlice("default_tags"),
		KeepTmp:     app.Cfg.GetBool("editor.keep_tmp"),
	}, nil
}

func registerOutputFlag(cmd *cobra.Command, target *string, modes ...string) {
	cmd.Flags().StringVarP(target, "output", "o", "", "output mode: "+strings.Join(modes, "|")+" (default from config)")
	cmd.Flags().Bool("indent", false, "indent json output (default from config json_indent)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}
