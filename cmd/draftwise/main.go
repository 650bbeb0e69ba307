package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/draftwise/internal/cli"
	"github.com/cloo-solutions/draftwise/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "draftwise",
		Short: "Draftwise CLI - client knowledge and deliverable drafting",
		Long: `Draftwise CLI ingests client knowledge, searches it and drafts deliverables.

Environment variables:
  DRAFTWISE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ConfigCmd())
	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.KnowledgeCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.DeliverableCmd())
	rootCmd.AddCommand(client.ClientsCmd())
	rootCmd.AddCommand(client.StakeholdersCmd())
	rootCmd.AddCommand(client.EngagementsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
