package pathresolve

import "testing"

func files(paths ...string) []Entry {
	out := make([]Entry, 0, len(paths))
	for _, p := range paths {
		out = append(out, Entry{Path: p, Kind: KindFile})
	}
	return out
}

func TestResolve_EmptyInputs(t *testing.T) {
	if _, ok := Resolve("", files("a.go")); ok {
		t.Fatal("empty suggestion must not match")
	}
	if _, ok := Resolve("a.go", nil); ok {
		t.Fatal("empty entry list must not match")
	}
	if _, ok := Resolve("docs", []Entry{{Path: "docs", Kind: KindDirectory}}); ok {
		t.Fatal("directories are not match targets")
	}
}

func TestResolve_ExactMatchWins(t *testing.T) {
	entries := files("pkg/readme.md", "readme.md")
	got, ok := Resolve("readme.md", entries)
	if !ok || got != "readme.md" {
		t.Fatalf("got %q ok=%v, want exact match readme.md", got, ok)
	}
}

func TestResolve_ExactPrecedesFilename(t *testing.T) {
	// A filename-only hit appears first in the list, but the exact match
	// later in the list must still win: stages run to completion in order.
	entries := files("other/src/main.py", "src/main.py")
	got, ok := Resolve("src/main.py", entries)
	if !ok || got != "src/main.py" {
		t.Fatalf("got %q ok=%v, want src/main.py", got, ok)
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	got, ok := Resolve("README.MD", files("readme.md"))
	if !ok || got != "readme.md" {
		t.Fatalf("got %q ok=%v, want readme.md", got, ok)
	}
}

func TestResolve_FilenameInWrongDirectory(t *testing.T) {
	entries := files("lib/util.go", "internal/deep/nested/config.yaml")
	got, ok := Resolve("src/util.go", entries)
	if !ok || got != "lib/util.go" {
		t.Fatalf("got %q ok=%v, want lib/util.go", got, ok)
	}
}

func TestResolve_ExtensionCascadeOrder(t *testing.T) {
	// .js precedes .ts in the fixed list, so a bare "foo" resolves to
	// foo.js even when foo.ts is listed first.
	entries := files("foo.ts", "foo.js")
	got, ok := Resolve("foo", entries)
	if !ok || got != "foo.js" {
		t.Fatalf("got %q ok=%v, want foo.js", got, ok)
	}
}

func TestResolve_ExtensionCascadeSkippedWithDot(t *testing.T) {
	// "foo.ts" already has an extension: no cascade, plain filename match.
	entries := files("src/foo.ts")
	got, ok := Resolve("foo.ts", entries)
	if !ok || got != "src/foo.ts" {
		t.Fatalf("got %q ok=%v, want src/foo.ts", got, ok)
	}
}

func TestResolve_DeepSuffix(t *testing.T) {
	entries := files("pkg/sub/docs/guide.md", "pkg/other.md")
	got, ok := Resolve("docs/guide.md", entries)
	if !ok || got != "pkg/sub/docs/guide.md" {
		t.Fatalf("got %q ok=%v, want pkg/sub/docs/guide.md", got, ok)
	}
}

func TestResolve_DeepSuffixNeedsTwoSegments(t *testing.T) {
	// Single-segment suggestion never reaches the deep-suffix stage; the
	// partial stage then matches by containment.
	entries := files("pkg/sub/guide_extra.md")
	got, ok := Resolve("guide", entries)
	if !ok || got != "pkg/sub/guide_extra.md" {
		t.Fatalf("got %q ok=%v, want containment hit", got, ok)
	}
}

func TestResolve_PartialFloor(t *testing.T) {
	entries := files("src/abcdef.go")
	if _, ok := Resolve("abc", entries); ok {
		t.Fatal("3-char filename must not trigger partial containment")
	}
	if got, ok := Resolve("abcd", entries); !ok || got != "src/abcdef.go" {
		t.Fatalf("got %q ok=%v, want partial hit for 4-char filename", got, ok)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	entries := files("src/app.go", "docs/intro.md")
	if got, ok := Resolve("totally_missing_file.xyz", entries); ok {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestResolve_FirstEntryWinsWithinStage(t *testing.T) {
	entries := files("a/main.go", "b/main.go")
	got, ok := Resolve("main.go", entries)
	if !ok || got != "a/main.go" {
		t.Fatalf("got %q ok=%v, want first-listed a/main.go", got, ok)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	entries := files("x/y/z.py", "q/z.py")
	first, ok1 := Resolve("z", entries)
	second, ok2 := Resolve("z", entries)
	if ok1 != ok2 || first != second {
		t.Fatalf("resolution not deterministic: %q vs %q", first, second)
	}
}
