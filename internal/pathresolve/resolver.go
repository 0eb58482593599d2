// Package pathresolve reconciles file paths suggested by a language model
// against the authoritative tree listing of a repository.
//
// Model-suggested paths are untrusted: the directory may be wrong, the
// extension missing, the casing off, or the whole path fabricated. Resolve
// runs a fixed cascade of matching strategies ordered from most to least
// precise and returns the first hit.
package pathresolve

import (
	"strings"
)

// Kind discriminates tree entries.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Entry is one record from a repository's recursive tree listing.
// Path is slash-separated and relative to the repository root.
type Entry struct {
	Path string
	Kind Kind
}

// extensions tried, in order, when the suggested filename has none.
var extensions = []string{
	".py", ".js", ".ts", ".md", ".html", ".css", ".json",
	".txt", ".cpp", ".h", ".java", ".go", ".tsx", ".jsx",
}

// minPartialLen guards stage 5 against over-matching on short names.
const minPartialLen = 4

// strategy returns the matched entry path and whether it matched.
type strategy func(q query, files []Entry) (string, bool)

// query carries the lowered forms of the suggestion shared by all stages.
type query struct {
	full     string // lowered suggestion, as given
	filename string // final segment of full
	segments []string
}

// Resolve maps a model-suggested path to a real file path from entries.
// Comparisons are case-insensitive and only entries of KindFile are
// considered. The second return is false when no stage produced a match,
// which is an expected outcome, not an error.
func Resolve(suggested string, entries []Entry) (string, bool) {
	if suggested == "" || len(entries) == 0 {
		return "", false
	}

	files := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == KindFile {
			files = append(files, e)
		}
	}
	if len(files) == 0 {
		return "", false
	}

	full := strings.ToLower(suggested)
	segments := strings.Split(full, "/")
	q := query{
		full:     full,
		filename: segments[len(segments)-1],
		segments: segments,
	}

	cascade := []strategy{
		matchExact,
		matchFilename,
		matchFilenameWithExtension,
		matchDeepSuffix,
		matchPartialFilename,
	}
	for _, s := range cascade {
		if path, ok := s(q, files); ok {
			return path, true
		}
	}
	return "", false
}

// matchExact hits when the suggestion equals a candidate's full path.
func matchExact(q query, files []Entry) (string, bool) {
	for _, e := range files {
		if strings.ToLower(e.Path) == q.full {
			return e.Path, true
		}
	}
	return "", false
}

// matchFilename hits when the suggestion's final segment equals a
// candidate's final segment: right file, wrong directory.
func matchFilename(q query, files []Entry) (string, bool) {
	return byFilename(q.filename, files)
}

// matchFilenameWithExtension retries the filename match with each known
// extension appended. Skipped when the filename already carries one,
// since stage 2 has then tried the same value.
func matchFilenameWithExtension(q query, files []Entry) (string, bool) {
	if strings.Contains(q.filename, ".") {
		return "", false
	}
	for _, ext := range extensions {
		if path, ok := byFilename(q.filename+ext, files); ok {
			return path, true
		}
	}
	return "", false
}

// matchDeepSuffix hits when a candidate path ends with the suggestion's
// last two segments: correct relative tail under an unknown prefix.
func matchDeepSuffix(q query, files []Entry) (string, bool) {
	if len(q.segments) < 2 {
		return "", false
	}
	suffix := q.segments[len(q.segments)-2] + "/" + q.filename
	for _, e := range files {
		if strings.HasSuffix(strings.ToLower(e.Path), suffix) {
			return e.Path, true
		}
	}
	return "", false
}

// matchPartialFilename hits when a candidate path contains the filename
// anywhere. Requires at least minPartialLen characters.
func matchPartialFilename(q query, files []Entry) (string, bool) {
	if len(q.filename) < minPartialLen {
		return "", false
	}
	for _, e := range files {
		if strings.Contains(strings.ToLower(e.Path), q.filename) {
			return e.Path, true
		}
	}
	return "", false
}

func byFilename(name string, files []Entry) (string, bool) {
	for _, e := range files {
		p := strings.ToLower(e.Path)
		if base := p[strings.LastIndexByte(p, '/')+1:]; base == name {
			return e.Path, true
		}
	}
	return "", false
}
