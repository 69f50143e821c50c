package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gennadis/poshana/internal/fakeservice"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

var serveFakeCmd = &cobra.Command{
	Use:   "serve-fake",
	Short: "Run an in-memory chat service for local development",
	Long: `Run an in-memory stand-in for the chat service. It answers every
message with "You said: <message>" and forgets everything on exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           fakeservice.New(nil).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("Fake chat service listening", "addr", serveAddr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("fake service stopped: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		slog.Info("Fake chat service stopped")
		return nil
	},
}

func init() {
	serveFakeCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8000", "Listen address")
	rootCmd.AddCommand(serveFakeCmd)
}
