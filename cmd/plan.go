package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/homeboard/homeboard/config"
	"github.com/homeboard/homeboard/internal/planner"
	"github.com/homeboard/homeboard/internal/provider"
	openai "github.com/homeboard/homeboard/internal/provider/openai"
)

// planCMD plans a single query from the command line, useful for
// poking at heuristics and prompt changes without a server.
func planCMD() *cobra.Command {
	var cfgPath string
	var heuristicOnly bool
	var plan = &cobra.Command{
		Use:   "plan [query]",
		Short: "Plan a dashboard tile for a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			var llm provider.Provider
			if !heuristicOnly && cfg.LLM.APIKey != "" {
				llm = openai.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
			}
			p := planner.New(llm, nil, cfg.LLM.PlanTimeout)

			d := p.Plan(context.Background(), strings.Join(args, " "))
			out, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	plan.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	plan.Flags().BoolVar(&heuristicOnly, "heuristic", false, "skip the model and plan with heuristics only")

	return plan
}
