package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finscout/finscout/internal/research"
)

func newNoticesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notices <query>",
		Short: "Search government support-program notices for one query.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFromContext(cmd.Context())
			if a == nil {
				return fmt.Errorf("application not initialized")
			}

			cfg := a.Config().Notices
			plan := research.Plan{
				NoticeATopK:    cfg.ATopK,
				NoticeBTopK:    cfg.BTopK,
				NoticeWebTopK:  cfg.WebTopK,
				UseWebFallback: cfg.UseWebFallback,
			}
			env := a.Orchestrator().Notices(cmd.Context(), args[0], plan)

			out, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return fmt.Errorf("encode envelope: %w", err)
			}
			cmd.Println(string(out))
			return nil
		},
	}
	return cmd
}
