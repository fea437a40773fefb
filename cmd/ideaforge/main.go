package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:   "ideaforge",
		Short: "Brainstorm project ideas with a local LLM",
		Long: `ideaforge serves a form that turns personal or team context into project
ideas using a local Ollama or LM Studio model, with built-in templates as fallback.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "Base URL of a running ideaforge server")

	rootCmd.AddCommand(
		newServeCmd(),
		newProvidersCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
