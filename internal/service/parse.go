package service

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/cloo-solutions/draftwise/internal/domain"
)

// ParsedContent maps every requested section to text and records where each
// came from.
type ParsedContent struct {
	Sections  map[string]string
	Sources   map[string]domain.SectionSource
	Malformed bool
}

// ParseGenerated maps raw model output onto sections. A JSON object is read
// strictly: only exact keys with non-empty string values count. Anything else
// is scanned for section headers. Sections still missing get a placeholder,
// so the key set always equals sections.
func ParseGenerated(raw string, sections []string) ParsedContent {
	found := map[string]string{}
	source := domain.SectionSourceJSON

	if obj, ok := parseJSONObject(raw); ok {
		for _, s := range sections {
			if v, ok := obj[s].(string); ok && strings.TrimSpace(v) != "" {
				found[s] = strings.TrimSpace(v)
			}
		}
	} else {
		found = scanSections(raw, sections)
		source = domain.SectionSourceHeuristic
	}

	out := ParsedContent{
		Sections: make(map[string]string, len(sections)),
		Sources:  make(map[string]domain.SectionSource, len(sections)),
	}
	for _, s := range sections {
		if text, ok := found[s]; ok {
			out.Sections[s] = text
			out.Sources[s] = source
			continue
		}
		out.Sections[s] = domain.SectionPlaceholder(s)
		out.Sources[s] = domain.SectionSourcePlaceholder
		out.Malformed = true
	}
	return out
}

func parseJSONObject(raw string) (map[string]any, bool) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "{") {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj, true
	}
	if err := json.Unmarshal([]byte(repairJSON(text)), &obj); err == nil {
		return obj, true
	}
	return nil, false
}

// repairJSON fixes keys whose opening quote the model dropped, e.g.
// `{executive_summary": "..."}`, and removes trailing commas before a
// closing brace.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)
	inString := false

	for i := 0; i < len(in); i++ {
		ch := in[i]

		if inString {
			out = append(out, ch)
			if ch == '\\' && i+1 < len(in) {
				i++
				out = append(out, in[i])
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out = append(out, ch)
		case ',':
			j := i + 1
			for j < len(in) && unicode.IsSpace(in[j]) {
				j++
			}
			if j < len(in) && in[j] == '}' {
				continue
			}
			out = append(out, ch)
		case '{':
			out = append(out, ch)
		default:
			if isKeyRune(ch) && isKeyStart(out) {
				j := i
				for j < len(in) && isKeyRune(in[j]) {
					j++
				}
				if j+1 < len(in) && in[j] == '"' && in[j+1] == ':' {
					out = append(out, '"')
					out = append(out, in[i:j+1]...)
					i = j
					continue
				}
			}
			out = append(out, ch)
		}
	}
	return string(out)
}

func isKeyRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isKeyStart reports whether the last non-space rune opens an object member.
func isKeyStart(out []rune) bool {
	for i := len(out) - 1; i >= 0; i-- {
		if unicode.IsSpace(out[i]) {
			continue
		}
		return out[i] == '{' || out[i] == ','
	}
	return false
}

// scanSections walks the text line by line. A short line naming a section
// starts it; following lines belong to it until the next header.
func scanSections(raw string, sections []string) map[string]string {
	found := map[string]string{}
	var current string
	var body []string

	flush := func() {
		if current != "" && len(body) > 0 {
			found[current] = strings.Join(body, "\n")
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if s, ok := matchHeader(line, sections); ok {
			flush()
			current, body = s, nil
			continue
		}
		if current != "" {
			body = append(body, line)
		}
	}
	flush()
	return found
}

func matchHeader(line string, sections []string) (string, bool) {
	normalized := strings.ToLower(strings.TrimFunc(line, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
	words := len(strings.Fields(normalized))

	for _, s := range sections {
		phrase := strings.ToLower(strings.ReplaceAll(s, "_", " "))
		if !strings.Contains(normalized, phrase) {
			continue
		}
		// Body sentences that merely mention a section are not headers.
		if words <= len(strings.Fields(phrase))+3 {
			return s, true
		}
	}
	return "", false
}

// NormalizeSections trims, de-duplicates and defaults the requested list,
// preserving order.
func NormalizeSections(sections []string) []string {
	seen := make(map[string]struct{}, len(sections))
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return append([]string(nil), domain.DefaultSections...)
	}
	return out
}
