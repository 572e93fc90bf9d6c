package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/compumarket/catalogadmin/internal/config"
	"github.com/compumarket/catalogadmin/internal/handlers"
	"github.com/compumarket/catalogadmin/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local product editing console",
		Long: `Starts a local JSON API for product form sessions on the specified port.

Each session holds one product being created or edited together with its
image set: stage uploads, remove stored images, preview them, then submit.`,
		Example: `  # Start server on default port 8888
  catalogadmin serve

  # Start server on custom port
  catalogadmin serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			sessions := storage.New()
			defer sessions.Close()

			handler := handlers.New(a.client, a.previews, sessions)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Catalog console available", "addr", addr, "url", "http://localhost"+addr, "api", a.cfg.APIURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped", "previews_left", a.previews.Len())
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")

	return cmd
}
