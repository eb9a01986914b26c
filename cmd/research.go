package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finscout/finscout/internal/research"
)

func newResearchCmd() *cobra.Command {
	var (
		web     bool
		doQuote bool
		symbols []string
		topK    int
	)

	cmd := &cobra.Command{
		Use:   "research <query>",
		Short: "Run the market research pipeline for one query.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFromContext(cmd.Context())
			if a == nil {
				return fmt.Errorf("application not initialized")
			}

			plan := research.Plan{
				Web:     web,
				Quotes:  doQuote,
				Symbols: symbols,
				WebTopK: topK,
			}
			env := a.Orchestrator().Research(cmd.Context(), args[0], plan)

			out, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return fmt.Errorf("encode envelope: %w", err)
			}
			cmd.Println(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&web, "web", true, "run the web search source")
	cmd.Flags().BoolVar(&doQuote, "quotes", false, "run quote lookups for --symbols")
	cmd.Flags().StringSliceVar(&symbols, "symbols", nil, "stock symbols to quote")
	cmd.Flags().IntVar(&topK, "top-k", 6, "web search result budget")
	return cmd
}
