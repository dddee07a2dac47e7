package cli

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/notecards/internal/present"
	"github.com/mithrel/notecards/pkg/api"
)

const defaultPager = "less -FRSX"

func renderNotes(cmd *cobra.Command, notes []api.Note, opts present.Options) error {
	write := func(w io.Writer) error { return present.RenderNotes(w, notes, opts) }
	if !opts.Mode.Pageable() {
		return write(cmd.OutOrStdout())
	}
	return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), write)
}

func renderNote(cmd *cobra.Command, n api.Note, opts present.Options) error {
	write := func(w io.Writer) error { return present.RenderNote(w, n, opts) }
	if !opts.Mode.Pageable() {
		return write(cmd.OutOrStdout())
	}
	return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), write)
}

func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return write(out)
	}
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = outFile
	if errFile, ok := errOut.(*os.File); ok {
		cmd.Stderr = errFile
	} else {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}
