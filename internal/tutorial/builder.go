package tutorial

import (
	"context"
	"errors"
	"fmt"
	"log"

	"repotutor/internal/githost"
	"repotutor/internal/llm"
	"repotutor/internal/pathresolve"
	"repotutor/internal/summary"
	"repotutor/internal/util/jsonutil"
)

// ErrNoChapters is returned when the model's response parsed but carried
// no chapters to render.
var ErrNoChapters = errors.New("tutorial: model returned no chapters")

// Host is the slice of the code-hosting client the builder needs.
type Host interface {
	Metadata(ctx context.Context, owner, repo string) (githost.RepoMeta, error)
	Tree(ctx context.Context, owner, repo, ref string) ([]pathresolve.Entry, error)
	Readme(ctx context.Context, owner, repo string) (string, error)
}

// Stage identifies a pipeline phase for progress reporting.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageGenerating Stage = "generating"
	StageResolving  Stage = "resolving"
)

// Builder drives the fetch → summarize → generate → resolve pipeline.
type Builder struct {
	host Host
	llm  llm.Client
}

func NewBuilder(host Host, client llm.Client) *Builder {
	return &Builder{host: host, llm: client}
}

// Build produces a tutorial for owner/repo. report, when non-nil, is
// called as each stage begins. A malformed model response surfaces as
// *jsonutil.MalformedResponseError; unresolvable file references degrade
// to FileRef.OK=false and never fail the build.
func (b *Builder) Build(ctx context.Context, owner, repo string, report func(Stage)) (*Tutorial, error) {
	notify := func(s Stage) {
		if report != nil {
			report(s)
		}
	}

	notify(StageFetching)
	meta, err := b.host.Metadata(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	treeRef := meta.DefaultBranch
	if treeRef == "" {
		treeRef = "HEAD"
	}
	entries, err := b.host.Tree(ctx, owner, repo, treeRef)
	if err != nil {
		return nil, err
	}
	readme, err := b.host.Readme(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	notify(StageGenerating)
	prompt, err := BuildPrompt(summary.Build(meta, entries, readme))
	if err != nil {
		return nil, err
	}
	raw, err := b.llm.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("tutorial: generate %s/%s: %w", owner, repo, err)
	}

	var wire wireTutorial
	if err := jsonutil.RecoverInto(raw, &wire); err != nil {
		return nil, err
	}
	if len(wire.Chapters) == 0 {
		return nil, ErrNoChapters
	}

	notify(StageResolving)
	tut := &Tutorial{
		Repo:     meta.FullName,
		Title:    wire.Title,
		Summary:  wire.Summary,
		Chapters: make([]Chapter, 0, len(wire.Chapters)),
	}
	for _, wc := range wire.Chapters {
		ch := Chapter{Title: wc.Title, Content: wc.Content, Diagram: wc.Diagram}
		for _, suggested := range wc.Files {
			ref := FileRef{Suggested: suggested}
			if resolved, ok := pathresolve.Resolve(suggested, entries); ok {
				ref.Resolved = resolved
				ref.OK = true
			} else {
				log.Printf("tutorial: no tree match for suggested path %q in %s/%s", suggested, owner, repo)
			}
			ch.FileRefs = append(ch.FileRefs, ref)
		}
		tut.Chapters = append(tut.Chapters, ch)
	}
	return tut, nil
}
