package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mithrel/notecards/internal/config"
	"github.com/mithrel/notecards/internal/db"
	"github.com/mithrel/notecards/internal/server"
)

func newServeCmd() *cobra.Command {
	var listen string
	var dsn string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference notes service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			v := app.Cfg
			if listen != "" {
				v.Set("server.addr", listen)
			}
			if dsn != "" {
				v.Set("server.db", dsn)
			}
			ctx := cmd.Context()
			notes, err := db.Open(ctx, config.ResolveServerDB(v))
			if err != nil {
				return err
			}
			defer notes.Close()

			addr := v.GetString("server.addr")
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := server.New(v, notes)
			httpSrv := &http.Server{Handler: srv.Router(), ReadHeaderTimeout: 10 * time.Second}
			if strings.TrimSpace(v.GetString("auth.token")) == "" {
				log.Warn("serve: auth.token is empty; the notes API is open")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "notes service listening on %s\n", ln.Addr())
			return serveUntilDone(ctx, httpSrv, ln)
		},
	}
	cmd.Flags().StringVar(&listen, "addr", "", "listen address (override config server.addr)")
	cmd.Flags().StringVar(&dsn, "db", "", "storage: mem:// or sqlite://path (override config server.db)")
	return cmd
}

// serveUntilDone serves on ln and shuts down gracefully when ctx ends.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
