package habitdash

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/saadjs/habitdash/internal/mockapi"
	"github.com/spf13/cobra"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run an in-memory backend for local use",
}

var (
	mockAddr   string
	mockSecret string
)

var mockServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the in-memory backend until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			level = "info"
		}
		logger := newLogger(cmd, level)
		srv := mockapi.New(mockapi.Options{Secret: []byte(mockSecret), Logger: logger})

		ln, err := net.Listen("tcp", mockAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", mockAddr, err)
		}
		httpServer := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- httpServer.Serve(ln) }()
		fmt.Fprintf(cmd.OutOrStdout(), "Mock backend listening on http://%s\n", ln.Addr())

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve mock backend: %w", err)
		case <-ctx.Done():
		}
		logger.Info("shutting down mock backend")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown mock backend: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mockCmd)
	mockCmd.AddCommand(mockServeCmd)

	mockServeCmd.Flags().StringVar(&mockAddr, "addr", "127.0.0.1:3333", "Listen address")
	mockServeCmd.Flags().StringVar(&mockSecret, "secret", "", "JWT signing secret (random when empty)")
}
