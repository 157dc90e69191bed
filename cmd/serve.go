package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/caproi-cli/internal/metrics"
	"github.com/KaramelBytes/caproi-cli/internal/pipeline"
	"github.com/KaramelBytes/caproi-cli/internal/server"
	"github.com/KaramelBytes/caproi-cli/internal/session"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API for dashboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := ":8080"
		if cfg != nil && cfg.ServerAddr != "" {
			addr = cfg.ServerAddr
		}
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		opt := pipeline.OptionsFromConfig(cfg)
		opt.Log = &logger

		srv := server.New(server.Config{
			Addr:    addr,
			Log:     logger,
			Options: opt,
			Store:   session.NewStore(),
			Metrics: metrics.NewManager(),
		})

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		fmt.Printf("✓ Listening on %s\n", addr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server_addr)")
}
