package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloo-solutions/draftwise/internal/repository"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/spf13/cobra"
)

// EmbedCmd returns the embed command group
func EmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Manage knowledge embeddings",
	}
	cmd.AddCommand(embedBackfillCmd())
	return cmd
}

func embedBackfillCmd() *cobra.Command {
	var (
		clientID int64
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed knowledge entries that have no embedding yet",
		Long: `Embeds every knowledge entry that is missing a vector, using the
configured embedding backend. Entries that already have an embedding are
left untouched, so the command is safe to re-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx)
			if err != nil {
				return err
			}
			defer rt.pool.Close()

			vec, err := newVectorizer(ctx, rt.cfg, rt.logger)
			if err != nil {
				return fmt.Errorf("embedding model unavailable: %w", err)
			}

			backfiller, err := service.NewBackfiller(vec, repository.NewEmbeddingRepository(rt.pool),
				service.WithBackfillWorkers(rt.cfg.BackfillWorkers),
				service.WithBatchSize(rt.cfg.BackfillBatchSize),
				service.WithBackfillLogger(rt.logger),
			)
			if err != nil {
				return err
			}
			defer backfiller.Release()

			input := service.BackfillInput{Limit: limit}
			if clientID > 0 {
				input.ClientID = &clientID
			}

			result, err := backfiller.Run(ctx, input)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().Int64Var(&clientID, "client", 0, "Only embed entries of this client")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to embed in this run (0 = 500)")

	return cmd
}
