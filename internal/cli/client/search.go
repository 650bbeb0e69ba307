package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// SearchResult is one ranked entry. Hybrid results carry the extra scores.
type SearchResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	EntryType     string  `json:"entry_type"`
	MeetingDate   string  `json:"meeting_date,omitempty"`
	Similarity    float64 `json:"similarity"`
	SemanticScore float64 `json:"semantic_score,omitempty"`
	PriorityScore float64 `json:"priority_score,omitempty"`
	CombinedScore float64 `json:"combined_score,omitempty"`
}

// SearchResponse covers the semantic, priority and hybrid response shapes.
type SearchResponse struct {
	Query           string         `json:"query,omitempty"`
	StakeholderName string         `json:"stakeholder_name,omitempty"`
	PrioritiesText  string         `json:"priorities_text,omitempty"`
	Results         []SearchResult `json:"results"`
	TotalFound      int            `json:"total_found"`
}

const (
	modeSemantic = "semantic"
	modePriority = "priority"
	modeHybrid   = "hybrid"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		mode          string
		stakeholderID int64
		limit         int
		threshold     float64
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the knowledge base",
		Long: `Search knowledge entries.

Modes:
  semantic  rank by similarity to the query (default)
  priority  rank by similarity to a stakeholder's priorities; no query
  hybrid    blend both, 70% semantic and 30% priority`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			q := strings.Join(args, " ")

			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			clientID, err := resolveClientID(cmd)
			if err != nil {
				return err
			}

			path, err := searchPath(mode, q, clientID, stakeholderID, limit, threshold)
			if err != nil {
				return err
			}
			var out SearchResponse
			if err := api.GetInto(path, &out); err != nil {
				return err
			}

			if outputJSON {
				printJSON(out)
				return nil
			}
			printSearchResults(mode, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", modeSemantic, "Search mode: semantic, priority or hybrid")
	cmd.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")
	cmd.Flags().Int64VarP(&stakeholderID, "stakeholder", "s", 0, "Stakeholder ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 = server default)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity for semantic mode (0 = server default)")

	return cmd
}

func searchPath(mode, q string, clientID, stakeholderID int64, limit int, threshold float64) (string, error) {
	params := map[string]string{
		"limit": strconv.Itoa(limit),
	}
	if stakeholderID > 0 {
		params["stakeholder_id"] = strconv.FormatInt(stakeholderID, 10)
	}

	switch mode {
	case modeSemantic:
		if q == "" {
			return "", fmt.Errorf("query is required for semantic search")
		}
		params["query"] = q
		params["client_id"] = strconv.FormatInt(clientID, 10)
		if threshold > 0 {
			params["threshold"] = strconv.FormatFloat(threshold, 'f', -1, 64)
		}
		delete(params, "stakeholder_id")
		return "/search/semantic" + query(params), nil
	case modePriority:
		if stakeholderID <= 0 {
			return "", fmt.Errorf("--stakeholder is required for priority search")
		}
		return "/search/by-stakeholder-priority" + query(params), nil
	case modeHybrid:
		if q == "" {
			return "", fmt.Errorf("query is required for hybrid search")
		}
		params["query"] = q
		params["client_id"] = strconv.FormatInt(clientID, 10)
		return "/search/hybrid" + query(params), nil
	default:
		return "", fmt.Errorf("unknown search mode %q", mode)
	}
}

func printSearchResults(mode string, out SearchResponse) {
	if mode == modePriority && out.StakeholderName != "" {
		fmt.Printf("Priorities of %s: %s\n\n", out.StakeholderName, out.PrioritiesText)
	}
	if len(out.Results) == 0 {
		fmt.Println("No results found.")
		return
	}
	for i, r := range out.Results {
		score := r.Similarity
		if mode == modeHybrid {
			score = r.CombinedScore
		}
		fmt.Printf("%d. [%d] %s (%.3f, %s)\n", i+1, r.ID, r.Title, score, r.EntryType)
		if mode == modeHybrid {
			fmt.Printf("   semantic %.3f  priority %.3f\n", r.SemanticScore, r.PriorityScore)
		}
		if r.Content != "" {
			fmt.Printf("   %s\n", r.Content)
		}
		fmt.Println()
	}
}
