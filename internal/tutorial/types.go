// Package tutorial turns a repository snapshot into a guided tutorial by
// prompting an LLM and post-processing its structured response.
package tutorial

// FileRef is a source-file reference inside a chapter. Suggested is the
// model's path as generated; Resolved is the authoritative tree path, set
// only when OK is true.
type FileRef struct {
	Suggested string `json:"suggested"`
	Resolved  string `json:"resolved,omitempty"`
	OK        bool   `json:"ok"`
}

// Chapter is one step of the guided tutorial.
type Chapter struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Diagram  string    `json:"diagram,omitempty"`
	FileRefs []FileRef `json:"file_refs,omitempty"`
}

// Tutorial is the finished artifact served to the UI.
type Tutorial struct {
	Repo     string    `json:"repo"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Chapters []Chapter `json:"chapters"`
}

// wireTutorial mirrors the JSON shape requested from the model. File
// references arrive as bare path strings and are resolved afterwards.
type wireTutorial struct {
	Title    string        `json:"title"`
	Summary  string        `json:"summary"`
	Chapters []wireChapter `json:"chapters"`
}

type wireChapter struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Diagram string   `json:"diagram"`
	Files   []string `json:"files"`
}
