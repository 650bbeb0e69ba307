package service

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cloo-solutions/draftwise/internal/domain"
)

//go:embed templates/fallback.yaml
var fallbackYAML []byte

type replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type fallbackTemplates struct {
	Sections map[string]string        `yaml:"sections"`
	Tones    map[string][]replacement `yaml:"tones"`
}

// FallbackContent renders deterministic section text for when the generator
// cannot be used.
type FallbackContent struct {
	templates fallbackTemplates
}

// NewFallbackContent loads the embedded templates.
func NewFallbackContent() (*FallbackContent, error) {
	return parseFallbackTemplates(fallbackYAML)
}

func parseFallbackTemplates(data []byte) (*FallbackContent, error) {
	var t fallbackTemplates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse fallback templates: %w", err)
	}
	if len(t.Sections) == 0 {
		return nil, fmt.Errorf("fallback templates define no sections")
	}
	return &FallbackContent{templates: t}, nil
}

// Render returns one entry per requested section. Sections without a
// template get the placeholder text.
func (f *FallbackContent) Render(client domain.ClientInfo, tone domain.Tone, sections []string) ParsedContent {
	name := client.Name
	if strings.TrimSpace(name) == "" {
		name = "the client"
	}

	out := ParsedContent{
		Sections: make(map[string]string, len(sections)),
		Sources:  make(map[string]domain.SectionSource, len(sections)),
	}
	for _, s := range sections {
		body, ok := f.templates.Sections[s]
		if !ok {
			out.Sections[s] = domain.SectionPlaceholder(s)
			out.Sources[s] = domain.SectionSourcePlaceholder
			continue
		}

		text := strings.TrimSpace(strings.ReplaceAll(body, "{client}", name))
		for _, r := range f.templates.Tones[string(tone)] {
			text = replaceFold(text, r.From, r.To)
		}
		out.Sections[s] = text
		out.Sources[s] = domain.SectionSourceFallback
	}
	return out
}

// replaceFold replaces every case-insensitive occurrence of old. A match at
// the start of a sentence keeps its leading capital.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}
	lower := strings.ToLower(s)
	needle := strings.ToLower(old)
	if len(lower) != len(s) {
		return strings.ReplaceAll(s, old, new)
	}

	var b strings.Builder
	i := 0
	for {
		j := strings.Index(lower[i:], needle)
		if j < 0 {
			break
		}
		j += i
		b.WriteString(s[i:j])
		repl := new
		if s[j] >= 'A' && s[j] <= 'Z' && repl != "" {
			repl = strings.ToUpper(repl[:1]) + repl[1:]
		}
		b.WriteString(repl)
		i = j + len(old)
	}
	b.WriteString(s[i:])
	return b.String()
}
