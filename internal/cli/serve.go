package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ggoodman/contracts/docs"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve module documentation over HTTP",
		Long: `Serve GET /modules and GET /modules/{name}, negotiating JSON, YAML,
Markdown or JSON Schema from the Accept header. Changes to the config file
are picked up while serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", a.cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return a.serve(ctx, ln)
		},
	}
	cmd.Flags().String(cfgKeyAddr, defaultAddr, "listen address")
	cmd.Flags().String(cfgKeyTitle, "", "heading placed above the Markdown module list")
	return cmd
}

// serve runs the documentation server on ln until ctx is done, reloading the
// config file whenever it changes.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	h := docs.NewHandler(a.reg, docs.WithLogger(a.log), docs.WithTitle(a.cfg.Title))
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.InfoContext(ctx, "serve.start", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if path := a.v.ConfigFileUsed(); path != "" {
		g.Go(func() error {
			return docs.WatchFile(ctx, path, func() { a.reload(ctx, h) })
		})
	}
	return g.Wait()
}

func (a *app) reload(ctx context.Context, h *docs.Handler) {
	if err := a.v.ReadInConfig(); err != nil {
		a.log.WarnContext(ctx, "config.reload.fail", slog.String("err", err.Error()))
		return
	}
	var cfg Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		a.log.WarnContext(ctx, "config.reload.fail", slog.String("err", err.Error()))
		return
	}
	a.apply(cfg)
	h.SetTitle(cfg.Title)
	a.log.InfoContext(ctx, "config.reload.ok", slog.String("title", cfg.Title))
}
