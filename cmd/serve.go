package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/handlers"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/report"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port string
	var resultsDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for browsing check results",
		Long: `Loads the run files in the results directory and serves them as JSON
under /api/runs, next to the generated HTML reports.`,
		Example: `  # Start server on default port 8888
  pubdatecheck serve --results html-reports

  # Start server on custom port
  pubdatecheck serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := report.LoadRuns(resultsDir)
			if err != nil {
				return fmt.Errorf("failed to load results: %w", err)
			}
			store := storage.New()
			for _, run := range runs {
				store.Add(run)
			}
			slog.Info("Runs loaded", "dir", resultsDir, "runs", store.Len())

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.New(store, resultsDir).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Report browser available", "addr", addr, "url", "http://localhost"+addr)
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
	cmd.Flags().StringVar(&resultsDir, "results", "html-reports", "Directory with run files and reports")

	return cmd
}
