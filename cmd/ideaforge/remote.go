package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/ideaforge/internal/models"
	"github.com/terra-clan/ideaforge/pkg/client"
)

func newProvidersCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List local LLM providers seen by a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.NewClient(serverURL).ListProviders(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			printProviders(cmd.OutOrStdout(), list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-probe providers instead of using the cache")

	return cmd
}

func printProviders(w io.Writer, list *models.ProviderList) {
	for _, p := range list.Providers {
		status := "offline"
		if p.IsOnline {
			status = "online"
		}
		fmt.Fprintf(w, "%s (%s) %s\n", p.Name, p.BaseURL, status)
		for _, m := range p.Models {
			details := strings.TrimSpace(strings.Join([]string{m.Quantization, m.Size}, " "))
			fmt.Fprintf(w, "  - %s %s\n", m.ID, details)
		}
	}
	if list.Selection != nil {
		fmt.Fprintf(w, "\nsuggested: %s / %s\n", list.Selection.Provider, list.Selection.Model)
	}
	fmt.Fprintf(w, "fetched at %s\n", list.FetchedAt.Local().Format("15:04:05"))
}

func newGenerateCmd() *cobra.Command {
	var (
		c           models.Context
		kind        string
		goal        string
		sessionType string
		cfg         models.LLMConfig
		provider    string
		temperature float64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate ideas through a running server",
		Example: `  ideaforge generate --interests "music tech" --skills Go --time-budget Weekend --goal learn --constraints "no backend"
  ideaforge generate --kind team --company Acme --product Rocket --timeline Q3 --team-goals "grow usage" --session-type marketing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Kind = models.ContextKind(kind)
			c.Goal = models.Goal(goal)
			c.SessionType = models.SessionType(sessionType)
			cfg.Provider = models.ProviderType(provider)
			if cmd.Flags().Changed("temperature") {
				cfg.Temperature = &temperature
			}

			result, err := client.NewClient(serverURL).GenerateIdeas(cmd.Context(), models.GenerateRequest{Context: c, Config: cfg})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), result)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", string(models.KindPersonal), "Context kind: personal or team")
	f.StringVar(&c.Interests, "interests", "", "Interests (personal)")
	f.StringVar(&c.Skills, "skills", "", "Skills or stack (personal)")
	f.StringVar(&c.TimeBudget, "time-budget", models.TimeBudgets[0], "Time budget (personal)")
	f.StringVar(&goal, "goal", string(models.GoalLearn), "Project goal (personal)")
	f.StringVar(&c.Constraints, "constraints", "", "Constraints (personal)")
	f.StringVar(&c.CompanyName, "company", "", "Company name (team)")
	f.StringVar(&c.ProductName, "product", "", "Product name (team)")
	f.StringVar(&c.Timeline, "timeline", "", "Timeline (team)")
	f.StringVar(&c.TeamGoals, "team-goals", "", "Team goals (team)")
	f.StringVar(&sessionType, "session-type", string(models.SessionProduct), "Session type (team)")
	f.StringVar(&provider, "provider", "", "Provider: ollama or lmstudio. Empty uses templates")
	f.StringVar(&cfg.Model, "model", "", "Model id")
	f.Float64Var(&temperature, "temperature", models.DefaultTemperature, "Sampling temperature, 0 to 2")
	f.IntVar(&cfg.MaxTokens, "max-tokens", models.DefaultMaxTokens, "Max response tokens, 500 to 4000")

	return cmd
}

func printResult(w, errW io.Writer, result *models.Result) {
	if result.Warning != "" {
		fmt.Fprintf(errW, "warning: %s\n", result.Warning)
	}
	fmt.Fprintf(w, "%s\n\n", result.Understanding)
	for _, idea := range result.Ideas {
		fmt.Fprintf(w, "%s. %s\n", idea.ID, idea.Title)
		fmt.Fprintf(w, "   %s\n", idea.Description)
		fmt.Fprintf(w, "   priority %s, effort %s, impact %s\n\n", idea.Priority, idea.Effort, idea.Impact)
	}
	source := string(result.Source)
	if result.Model != "" {
		source += " (" + result.Model + ")"
	}
	fmt.Fprintf(w, "source: %s\n", source)
}
