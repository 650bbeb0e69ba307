package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/draftwise/internal/cli"
	"github.com/cloo-solutions/draftwise/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "draftwised",
		Short: "Draftwise daemon and admin CLI",
		Long:  "Draftwise daemon for running the API server, applying migrations and backfilling embeddings",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.EmbedCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
