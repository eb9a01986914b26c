package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finscout/finscout/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the aggregation pipelines over HTTP.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFromContext(cmd.Context())
			if a == nil {
				return fmt.Errorf("application not initialized")
			}

			srv := server.New(a.Orchestrator(), a.Logger().Named("server"))
			addr := fmt.Sprintf(":%d", a.Config().Server.Port)
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				_ = httpServer.Close()
			}()

			a.Logger().Info("http server listening", zap.String("addr", addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		},
	}
	return cmd
}
