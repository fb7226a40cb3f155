package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/taskloop/control"
	"github.com/tailored-agentic-units/taskloop/observability"
	"github.com/tailored-agentic-units/taskloop/session"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session control API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mustBind(cmd, "addr")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		observer, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			return err
		}

		store, err := session.NewStore(&cfg.Session)
		if err != nil {
			return err
		}
		defer store.Close()

		path, handler := control.NewHandler(store,
			connect.WithInterceptors(control.ObserverInterceptor(observer)))
		mux := http.NewServeMux()
		mux.Handle(path, handler)

		srv := &http.Server{
			Addr:              viper.GetString("addr"),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s on %s\n", control.ServiceName, srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
}
