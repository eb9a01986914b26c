// Package cmd defines the finscout command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finscout/finscout/internal/app"
	"github.com/finscout/finscout/internal/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It is a variable so tests can
// replace it with a mock factory.
var newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finscout",
		Short: "Concurrent multi-source research aggregation.",
		Long: `finscout fans independent lookups out against web search, market
quotes, company-profile pages and government-notice portals, tolerates
per-source failure, and merges everything into one canonical result.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a := appFromContext(cmd.Context()); a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newResearchCmd())
	cmd.AddCommand(newNoticesCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func appFromContext(ctx context.Context) *app.App {
	a, _ := ctx.Value(appKey).(*app.App)
	return a
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
