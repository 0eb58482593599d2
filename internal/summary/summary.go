// Package summary condenses a repository snapshot into a bounded payload
// suitable for embedding in an LLM prompt.
package summary

import (
	"regexp"
	"sort"
	"strings"

	"repotutor/internal/githost"
	"repotutor/internal/pathresolve"
)

const (
	// maxTreePaths bounds the rendered tree so huge repositories do not
	// blow the prompt budget.
	maxTreePaths = 400
	// maxReadmeRunes bounds the README excerpt.
	maxReadmeRunes = 8000
)

// Summary is the prompt-ready view of a repository.
type Summary struct {
	Meta      githost.RepoMeta `json:"meta"`
	FileCount int              `json:"file_count"`
	Tree      string           `json:"tree"`
	Readme    string           `json:"readme"`
}

// Build produces a deterministic summary from the fetched snapshot.
func Build(meta githost.RepoMeta, entries []pathresolve.Entry, readme string) Summary {
	paths := make([]string, 0, len(entries))
	fileCount := 0
	for _, e := range entries {
		if e.Kind != pathresolve.KindFile {
			continue
		}
		fileCount++
		if len(paths) < maxTreePaths {
			paths = append(paths, e.Path)
		}
	}
	return Summary{
		Meta:      meta,
		FileCount: fileCount,
		Tree:      PathsToTree(paths),
		Readme:    truncateRunes(CleanMarkdown(readme), maxReadmeRunes),
	}
}

var (
	// reImageMD matches markdown images: ![alt](url)
	reImageMD = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	// reImageHTML matches HTML image tags: <img ...>
	reImageHTML = regexp.MustCompile(`(?is)<img[^>]*>`)
	// reComment matches HTML comments: <!-- ... -->
	reComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	// reExcessiveNewlines matches 3 or more newlines to compress them
	reExcessiveNewlines = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdown removes content that is generally not useful for LLM
// context, such as images, HTML comments, and excessive whitespace.
func CleanMarkdown(text string) string {
	text = reImageMD.ReplaceAllString(text, "")
	text = reImageHTML.ReplaceAllString(text, "")
	text = reComment.ReplaceAllString(text, "")
	text = reExcessiveNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// PathsToTree converts a list of file paths into a visual tree string.
// Example:
// src
// ├── main.go
// └── utils
//     └── helper.go
func PathsToTree(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	root := make(map[string]any)
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.Split(p, "/")
		current := root
		for _, part := range parts {
			if part == "" || part == "." {
				continue
			}
			if _, ok := current[part]; !ok {
				current[part] = make(map[string]any)
			}
			current = current[part].(map[string]any)
		}
	}

	var sb strings.Builder
	renderTree(&sb, root, "")
	return strings.TrimSpace(sb.String())
}

func renderTree(sb *strings.Builder, node map[string]any, prefix string) {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		isLast := i == len(keys)-1
		sb.WriteString(prefix)
		if isLast {
			sb.WriteString("└── ")
		} else {
			sb.WriteString("├── ")
		}
		sb.WriteString(k)
		sb.WriteString("\n")

		children := node[k].(map[string]any)
		if len(children) > 0 {
			newPrefix := prefix
			if isLast {
				newPrefix += "    "
			} else {
				newPrefix += "│   "
			}
			renderTree(sb, children, newPrefix)
		}
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "\n…(truncated)"
}
