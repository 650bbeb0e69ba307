package client

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type knowledgeList struct {
	Items   []*KnowledgeEntry `json:"items"`
	Cursor  string            `json:"cursor,omitempty"`
	HasMore bool              `json:"has_more"`
}

// KnowledgeCmd groups the knowledge entry commands.
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledge",
		Aliases: []string{"kb"},
		Short:   "Inspect and maintain knowledge entries",
	}
	cmd.AddCommand(knowledgeGetCmd(), knowledgeListCmd(), knowledgeDeleteCmd(), knowledgeEmbedCmd(), knowledgeBackfillCmd())
	return cmd
}

func parseIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func knowledgeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a knowledge entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			var entry KnowledgeEntry
			if err := api.GetInto(fmt.Sprintf("/knowledge/%d", id), &entry); err != nil {
				return err
			}
			if outputJSON {
				printJSON(entry)
				return nil
			}
			fmt.Printf("# %s\n\n", entry.Title)
			fmt.Printf("ID: %d  Client: %d  Type: %s  Embedded: %t\n", entry.ID, entry.ClientID, entry.Type, entry.HasEmbedding)
			if entry.MeetingDate != "" {
				fmt.Printf("Meeting date: %s\n", entry.MeetingDate)
			}
			fmt.Printf("\n%s\n", entry.Content)
			return nil
		},
	}
}

func knowledgeListCmd() *cobra.Command {
	var (
		entryType string
		limit     int
		cursor    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			clientID, err := resolveClientID(cmd)
			if err != nil {
				return err
			}

			var out knowledgeList
			path := "/knowledge" + query(map[string]string{
				"client_id":  strconv.FormatInt(clientID, 10),
				"entry_type": entryType,
				"cursor":     cursor,
				"limit":      strconv.Itoa(limit),
			})
			if err := api.GetInto(path, &out); err != nil {
				return err
			}

			if outputJSON {
				printJSON(out)
				return nil
			}
			if len(out.Items) == 0 {
				fmt.Println("No knowledge entries found.")
				return nil
			}
			for _, k := range out.Items {
				marker := " "
				if !k.HasEmbedding {
					marker = "*"
				}
				fmt.Printf("%s %6d  %-14s %s\n", marker, k.ID, k.Type, k.Title)
			}
			if out.HasMore {
				fmt.Printf("\nMore results: --cursor %s\n", out.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")
	cmd.Flags().StringVarP(&entryType, "type", "t", "", "Filter by entry type")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	return cmd
}

func knowledgeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge entry and its embedding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			if _, err := api.Delete(fmt.Sprintf("/knowledge/%d", id)); err != nil {
				return err
			}
			fmt.Printf("Deleted knowledge entry %d\n", id)
			return nil
		},
	}
}

func knowledgeEmbedCmd() *cobra.Command {
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "embed <id>",
		Short: "Embed a knowledge entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			path := fmt.Sprintf("/knowledge/%d/embed", id)
			if regenerate {
				path += "?regenerate=true"
			}
			var out map[string]interface{}
			if err := api.PostInto(path, nil, &out); err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Recompute even if an embedding exists")
	return cmd
}

func knowledgeBackfillCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed entries that have no embedding yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			clientID, err := resolveClientID(cmd)
			if err != nil {
				return err
			}

			path := "/knowledge/backfill" + query(map[string]string{
				"client_id": strconv.FormatInt(clientID, 10),
				"limit":     strconv.Itoa(limit),
			})
			var out map[string]interface{}
			if err := api.PostInto(path, nil, &out); err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to embed (0 = server default)")
	return cmd
}
