package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/draftwise/internal/domain"
)

// PromptInput is everything the generation prompt is built from.
type PromptInput struct {
	Client          domain.ClientInfo
	Persona         domain.StakeholderInfo
	Phase           domain.Phase
	Knowledge       []RetrievedEntry
	DeliverableType string
	Sections        []string
}

const guardrails = `ETHICAL GUARDRAILS (MANDATORY):
- Your primary directive is to be objective and fact-based
- Do not invent information not present in the provided context
- Analyze the provided information without bias
- Avoid loaded, subjective, or stereotypical language
- If information is insufficient, clearly state what additional data is needed
- Always maintain a professional, consultative tone`

// BuildPrompt renders the generation prompt. Section order follows
// in.Sections and the output format lists exactly those keys.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString(guardrails)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "CLIENT INFORMATION:\nName: %s\nIndustry: %s\nDescription: %s\n\n",
		orNA(in.Client.Name), orNA(in.Client.Industry), orNA(in.Client.Description))

	fmt.Fprintf(&b, "TARGET STAKEHOLDER:\nName: %s\nRole: %s\nTone Preference: %s\nTop Priorities:\n1. %s\n2. %s\n3. %s\n\n",
		orNA(in.Persona.Name), orNA(in.Persona.Role), orNA(string(in.Persona.Tone)),
		orNA(in.Persona.Priority1), orNA(in.Persona.Priority2), orNA(in.Persona.Priority3))

	b.WriteString("RELEVANT KNOWLEDGE CONTEXT:\n")
	if len(in.Knowledge) == 0 {
		b.WriteString("No knowledge entries are available for this client.\n")
	}
	for i, k := range in.Knowledge {
		if i > 0 {
			b.WriteString("\n")
		}
		date := "N/A"
		if k.Entry.MeetingDate != nil {
			date = k.Entry.MeetingDate.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "Source: %s (%s)\nDate: %s\nContent: %s\n", k.Entry.Title, k.Entry.Type, date, k.Entry.Content)
	}
	b.WriteString("\n")

	clientName := in.Client.Name
	if clientName == "" {
		clientName = "the client"
	}
	fmt.Fprintf(&b, "TASK:\nGenerate a %s deliverable for %s.\n\nRequired sections: %s\n\n",
		in.DeliverableType, clientName, strings.Join(in.Sections, ", "))
	if in.Phase != "" {
		fmt.Fprintf(&b, "The engagement is in the %s phase of the DAAEG framework.\n\n", in.Phase)
	}

	fmt.Fprintf(&b, "TONE REQUIREMENTS:\n- Match the stakeholder's tone preference: %s\n", orNA(string(in.Persona.Tone)))
	b.WriteString("- Use direct language for 'direct' tone\n")
	b.WriteString("- Use collaborative language for 'collaborative' tone\n")
	b.WriteString("- Use analytical language for 'analytical' tone\n")
	b.WriteString("- Use strategic language for 'strategic' tone\n")
	b.WriteString("- Reference the DAAEG framework (Discover, Assess, Analyze, Execute, Govern) where appropriate\n")
	b.WriteString("- Avoid jargon unless necessary\n\n")

	b.WriteString("OUTPUT FORMAT:\nReturn only a JSON object with exactly these keys, each mapped to the section text:\n{\n")
	for i, s := range in.Sections {
		sep := ","
		if i == len(in.Sections)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  %q: \"Content for %s...\"%s\n", s, strings.ToLower(domain.SectionTitle(s)), sep)
	}
	b.WriteString("}\n")

	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
