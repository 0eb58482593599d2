package tutorial

import (
	"bytes"
	"fmt"
	"strings"

	"repotutor/internal/summary"
	"repotutor/internal/util/jsonutil"
)

const promptPurpose = "Write a guided tutorial that teaches a newcomer how this repository works, as an ordered sequence of chapters."

var promptRules = []string{
	"Order chapters from high-level architecture down to notable implementation details.",
	"Each chapter explains one concept and cites the source files it discusses.",
	"Cite files by their path relative to the repository root, exactly as shown in the tree.",
	"Diagrams are mermaid source; include one only when it clarifies the chapter.",
	"Write between 4 and 8 chapters.",
}

var promptConstraints = []string{
	"Respond with a single JSON object and nothing else: no prose, no markdown fences.",
	"Do not invent files that are absent from the tree.",
}

const promptOutputFormat = `{
  "title": "string",
  "summary": "string, one paragraph",
  "chapters": [
    {
      "title": "string",
      "content": "string, markdown body of the chapter",
      "diagram": "string, mermaid source or empty",
      "files": ["path/relative/to/root"]
    }
  ]
}`

// BuildPrompt renders the sectioned tutorial prompt for one repository
// summary.
func BuildPrompt(s summary.Summary) (string, error) {
	input, err := jsonutil.MarshalNoEscape(s)
	if err != nil {
		return "", fmt.Errorf("tutorial: encode summary: %w", err)
	}

	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", promptPurpose)
	writeSection(&buf, "INPUT", string(input))
	writeSection(&buf, "RULES", formatList(promptRules))
	writeSection(&buf, "CONSTRAINTS", formatList(promptConstraints))
	writeSection(&buf, "OUTPUT_FORMAT", promptOutputFormat)
	return strings.TrimSpace(buf.String()) + "\n", nil
}

func writeSection(buf *bytes.Buffer, name, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(buf, "[%s]\n%s\n\n", name, body)
}

func formatList(items []string) string {
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString("- ")
		sb.WriteString(it)
		sb.WriteString("\n")
	}
	return sb.String()
}
