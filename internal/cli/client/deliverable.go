package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// GenerateRequest mirrors the deliverable generation API body.
type GenerateRequest struct {
	ClientID        int64    `json:"client_id"`
	EngagementID    *int64   `json:"engagement_id,omitempty"`
	StakeholderID   *int64   `json:"stakeholder_id,omitempty"`
	Title           string   `json:"title"`
	DeliverableType string   `json:"deliverable_type"`
	Sections        []string `json:"sections,omitempty"`
}

// Deliverable is the subset of the deliverable response the CLI prints.
type Deliverable struct {
	ID               int64             `json:"id"`
	ClientID         int64             `json:"client_id"`
	Title            string            `json:"title"`
	DeliverableType  string            `json:"deliverable_type"`
	Status           string            `json:"status"`
	GeneratedContent map[string]string `json:"ai_generated_content"`
	FinalContent     string            `json:"final_content,omitempty"`
	Archived         bool              `json:"archived"`
	GeneratedAt      string            `json:"generated_at"`
	ApprovedAt       string            `json:"approved_at,omitempty"`
}

type generateResponse struct {
	Deliverable     *Deliverable      `json:"deliverable"`
	Sections        map[string]string `json:"sections"`
	KnowledgeUsed   []json.RawMessage `json:"knowledge_used"`
	FallbackUsed    bool              `json:"fallback_used"`
	Malformed       bool              `json:"malformed"`
	RecencyFallback bool              `json:"recency_fallback"`
}

// DeliverableCmd groups the deliverable commands.
func DeliverableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deliverable",
		Aliases: []string{"dl"},
		Short:   "Generate and manage deliverables",
	}
	cmd.AddCommand(
		deliverableGenerateCmd(),
		deliverableGetCmd(),
		deliverableListCmd(),
		deliverableApproveCmd(),
		deliverableArchiveCmd(),
	)
	return cmd
}

func deliverableGenerateCmd() *cobra.Command {
	var (
		req           GenerateRequest
		engagementID  int64
		stakeholderID int64
		sections      string
	)

	cmd := &cobra.Command{
		Use:   "generate <title>",
		Short: "Draft a deliverable from the client's knowledge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			if req.ClientID, err = resolveClientID(cmd); err != nil {
				return err
			}
			req.Title = args[0]
			if engagementID > 0 {
				req.EngagementID = &engagementID
			}
			if stakeholderID > 0 {
				req.StakeholderID = &stakeholderID
			}
			req.Sections = splitList(sections)

			var out generateResponse
			if err := api.PostInto("/deliverables/generate", req, &out); err != nil {
				return err
			}
			if outputJSON {
				printJSON(out)
				return nil
			}

			fmt.Printf("Generated deliverable %d: %s\n", out.Deliverable.ID, out.Deliverable.Title)
			fmt.Printf("Knowledge used: %d entries\n", len(out.KnowledgeUsed))
			switch {
			case out.FallbackUsed:
				fmt.Println("Model unavailable; fallback content was used.")
			case out.Malformed:
				fmt.Println("Model output could not be parsed; sections hold placeholders.")
			case out.RecencyFallback:
				fmt.Println("No entry passed the relevance threshold; the most recent entries were used.")
			}
			printSections(out.Sections)
			return nil
		},
	}

	cmd.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")
	cmd.Flags().Int64Var(&engagementID, "engagement", 0, "Engagement ID")
	cmd.Flags().Int64VarP(&stakeholderID, "stakeholder", "s", 0, "Target stakeholder ID")
	cmd.Flags().StringVarP(&req.DeliverableType, "type", "t", "report", "Deliverable type")
	cmd.Flags().StringVar(&sections, "sections", "", "Comma-separated section names")
	return cmd
}

func deliverableGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a deliverable",
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

			var d Deliverable
			if err := api.GetInto(fmt.Sprintf("/deliverables/%d", id), &d); err != nil {
				return err
			}
			if outputJSON {
				printJSON(d)
				return nil
			}
			fmt.Printf("# %s\n\nID: %d  Type: %s  Status: %s  Archived: %t\n", d.Title, d.ID, d.DeliverableType, d.Status, d.Archived)
			if d.FinalContent != "" {
				fmt.Printf("\n%s\n", d.FinalContent)
				return nil
			}
			printSections(d.GeneratedContent)
			return nil
		},
	}
}

func deliverableListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deliverables",
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

			var out []*Deliverable
			path := "/deliverables" + query(map[string]string{"client_id": strconv.FormatInt(clientID, 10)})
			if err := api.GetInto(path, &out); err != nil {
				return err
			}
			if outputJSON {
				printJSON(out)
				return nil
			}
			if len(out) == 0 {
				fmt.Println("No deliverables found.")
				return nil
			}
			for _, d := range out {
				fmt.Printf("%6d  %-10s %-16s %s\n", d.ID, d.Status, d.DeliverableType, d.Title)
			}
			return nil
		},
	}
	cmd.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")
	return cmd
}

func deliverableApproveCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a deliverable with its final content",
		Long:  "Approves a deliverable. The final content is read from --file or stdin and is fed back into the knowledge base.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			content, err := readInput(file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(string(content)) == "" {
				return fmt.Errorf("final content is empty")
			}
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			var out struct {
				Deliverable      *Deliverable `json:"deliverable"`
				KnowledgeEntryID int64        `json:"knowledge_entry_id"`
				Embedded         bool         `json:"embedded"`
			}
			body := map[string]string{"final_content": string(content)}
			if err := api.PostInto(fmt.Sprintf("/deliverables/%d/approve", id), body, &out); err != nil {
				return err
			}
			if outputJSON {
				printJSON(out)
				return nil
			}
			fmt.Printf("Approved deliverable %d; stored as knowledge entry %d\n", id, out.KnowledgeEntryID)
			if out.Deliverable != nil && out.Deliverable.Archived {
				fmt.Println("Archived to object storage.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "File with the final content (default stdin)")
	return cmd
}

func deliverableArchiveCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Print or download the archived copy of an approved deliverable",
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

			var out struct {
				DownloadURL string `json:"download_url"`
			}
			if err := api.GetInto(fmt.Sprintf("/deliverables/%d/archive", id), &out); err != nil {
				return err
			}
			if output == "" {
				fmt.Println(out.DownloadURL)
				return nil
			}
			if err := api.DownloadFile(out.DownloadURL, output); err != nil {
				return err
			}
			fmt.Printf("Saved archive to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "out", "O", "", "Download the archive to this path")
	return cmd
}

func printSections(sections map[string]string) {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("\n## %s\n\n%s\n", name, sections[name])
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
