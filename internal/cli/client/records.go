package client

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// ClientRecord is a consulting client as returned by the API.
type ClientRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`
}

// Stakeholder is a client stakeholder as returned by the API.
type Stakeholder struct {
	ID        int64  `json:"id"`
	ClientID  int64  `json:"client_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Tone      string `json:"communication_tone"`
	Priority1 string `json:"priority_1,omitempty"`
	Priority2 string `json:"priority_2,omitempty"`
	Priority3 string `json:"priority_3,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Engagement is a client engagement as returned by the API.
type Engagement struct {
	ID       int64  `json:"id"`
	ClientID int64  `json:"client_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Phase    string `json:"daaeg_phase,omitempty"`
}

// ClientsCmd groups the client record commands.
func ClientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage consulting clients",
	}

	var industry, description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			var c ClientRecord
			body := ClientRecord{Name: args[0], Industry: industry, Description: description}
			if err := api.PostInto("/clients", body, &c); err != nil {
				return err
			}
			fmt.Printf("Created client %d: %s\n", c.ID, c.Name)
			return nil
		},
	}
	create.Flags().StringVar(&industry, "industry", "", "Industry")
	create.Flags().StringVar(&description, "description", "", "Description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			var out []*ClientRecord
			if err := api.GetInto("/clients", &out); err != nil {
				return err
			}
			if outputJSON {
				printJSON(out)
				return nil
			}
			for _, c := range out {
				fmt.Printf("%6d  %-30s %s\n", c.ID, c.Name, c.Industry)
			}
			return nil
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

// StakeholdersCmd groups the stakeholder commands.
func StakeholdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stakeholders",
		Short: "Manage client stakeholders",
	}

	var s Stakeholder
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a stakeholder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			if s.ClientID, err = resolveClientID(cmd); err != nil {
				return err
			}
			s.Name = args[0]

			var out Stakeholder
			if err := api.PostInto("/stakeholders", s, &out); err != nil {
				return err
			}
			fmt.Printf("Created stakeholder %d: %s (%s)\n", out.ID, out.Name, out.Role)
			return nil
		},
	}
	create.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")
	create.Flags().StringVar(&s.Role, "role", "", "Role, e.g. CFO")
	create.Flags().StringVar(&s.Tone, "tone", "", "Communication tone (direct, collaborative, analytical, strategic)")
	create.Flags().StringVar(&s.Priority1, "priority1", "", "Top priority")
	create.Flags().StringVar(&s.Priority2, "priority2", "", "Second priority")
	create.Flags().StringVar(&s.Priority3, "priority3", "", "Third priority")
	create.Flags().StringVar(&s.Email, "email", "", "Email")
	create.Flags().StringVar(&s.Phone, "phone", "", "Phone")

	list := &cobra.Command{
		Use:   "list",
		Short: "List a client's stakeholders",
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
			if clientID <= 0 {
				return fmt.Errorf("--client is required")
			}

			var out []*Stakeholder
			if err := api.GetInto("/clients/"+strconv.FormatInt(clientID, 10)+"/stakeholders", &out); err != nil {
				return err
			}
			if outputJSON {
				printJSON(out)
				return nil
			}
			for _, st := range out {
				fmt.Printf("%6d  %-24s %-16s %s | %s | %s\n", st.ID, st.Name, st.Role, st.Priority1, st.Priority2, st.Priority3)
			}
			return nil
		},
	}
	list.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")

	cmd.AddCommand(create, list)
	return cmd
}

// EngagementsCmd lists a client's engagements.
func EngagementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engagements",
		Short: "List a client's engagements",
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

			var out []*Engagement
			if err := api.GetInto("/engagements"+query(map[string]string{"client_id": strconv.FormatInt(clientID, 10)}), &out); err != nil {
				return err
			}
			if outputJSON {
				printJSON(out)
				return nil
			}
			for _, e := range out {
				fmt.Printf("%6d  %-30s %-10s %s\n", e.ID, e.Name, e.Status, e.Phase)
			}
			return nil
		},
	}
	cmd.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")
	return cmd
}
