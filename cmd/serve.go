package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/fieldfix/internal/handlers"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port   string
		source string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the normalization HTTP service",
		Long: `Starts a JSON API exposing the field normalizers on the specified port.

When --source is given, /api/link/{vocabulary} checks posted (record, code)
pairs against that vocabulary's reference table. Reference tables are loaded
on first use and kept in memory.`,
		Example: `  # Start server on default port 8888
  fieldfix serve

  # Enable linking against the catalog database
  fieldfix serve --port 3000 --source postgres://catalog@localhost/library`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			var provider reference.Provider
			if source != "" {
				store, err := reference.Open(cmd.Context(), source)
				if err != nil {
					return err
				}
				defer store.Close()
				provider = store
			}

			mux := http.NewServeMux()
			handlers.New(cfg, provider).Routes(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Fieldfix API available", "addr", addr, "url", "http://localhost"+addr, "linking", provider != nil)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&source, "source", "", "Reference source for linking (PostgreSQL DSN or export directory)")

	return cmd
}
