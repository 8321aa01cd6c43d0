package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwarden/git-surgeon/internal/diffparse"
	"github.com/cwarden/git-surgeon/internal/hunklist"
	"github.com/cwarden/git-surgeon/internal/selection"
)

const twoHunkDiff = `diff --git a/f.go b/f.go
index 1111111..2222222 100644
--- a/f.go
+++ b/f.go
@@ -1,3 +1,4 @@
 package f
 
-func Old() {}
+func New() {}
+func Extra() {}
@@ -10,3 +11,3 @@
 tail context
-removed tail
+added tail
 more context
`

func parseEntries(t *testing.T, diff string) []hunklist.Entry {
	t.Helper()
	patches, err := diffparse.Parse([]byte(diff))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return hunklist.Build(patches)
}

func TestSynthesizeWholeHunk(t *testing.T) {
	entries := parseEntries(t, twoHunkDiff)
	resolved, err := selection.Resolve(entries, []string{string(entries[0].ID)}, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	patch, err := Synthesize(resolved, Forward)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	text := string(patch)
	if !strings.Contains(text, "func New()") {
		t.Errorf("expected selected hunk's content in output, got:\n%s", text)
	}
	if strings.Contains(text, "added tail") {
		t.Errorf("expected unselected hunk to be omitted, got:\n%s", text)
	}
	if !strings.HasPrefix(text, "diff --git a/f.go b/f.go") {
		t.Errorf("expected file header to be preserved, got:\n%s", text)
	}
}

func TestSynthesizeEmptySelectionErrors(t *testing.T) {
	entries := parseEntries(t, twoHunkDiff)
	_, err := Synthesize(nil, Forward)
	if err != ErrEmptySelection {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	_ = entries
}

func TestSynthesizeLineRangeDropsExcludedAdd(t *testing.T) {
	// Hunk display lines: 1 ctx, 2 ctx(blank), 3 del, 4 add(New), 5 add(Extra)
	entries := parseEntries(t, twoHunkDiff)
	resolved, err := selection.Resolve(entries, []string{string(entries[0].ID) + ":3-4"}, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	patch, err := Synthesize(resolved, Forward)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	text := string(patch)
	if !strings.Contains(text, "-func Old() {}") {
		t.Errorf("expected included del line to remain, got:\n%s", text)
	}
	if !strings.Contains(text, "+func New() {}") {
		t.Errorf("expected included add line to remain, got:\n%s", text)
	}
	if strings.Contains(text, "Extra") {
		t.Errorf("expected excluded add line to be dropped, got:\n%s", text)
	}
}

func TestSynthesizeLineRangeConvertsExcludedDelToContext(t *testing.T) {
	diff := `diff --git a/f.go b/f.go
index 1111111..2222222 100644
--- a/f.go
+++ b/f.go
@@ -1,3 +1,1 @@
-first
-second
 third
`
	patches, err := diffparse.Parse([]byte(diff))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	entries := hunklist.Build(patches)

	// Select only line 1 ("-first"); line 2 ("-second") must convert to
	// context so the remaining hunk stays internally consistent.
	resolved, err := selection.Resolve(entries, []string{string(entries[0].ID) + ":1-1"}, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	patch, err := Synthesize(resolved, Forward)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	text := string(patch)
	if !strings.Contains(text, "-first") {
		t.Errorf("expected included del line to remain a del, got:\n%s", text)
	}
	if strings.Contains(text, "-second") {
		t.Errorf("expected excluded del line to convert to context, got:\n%s", text)
	}
	if !strings.Contains(text, " second") {
		t.Errorf("expected excluded del line's content to survive as context, got:\n%s", text)
	}
}

func TestSynthesizeLineRangeKeepsIncludedContext(t *testing.T) {
	// Hunk display lines: 1 ctx, 2 ctx(blank), 3 del, 4 add(New), 5 add(Extra)
	entries := parseEntries(t, twoHunkDiff)
	resolved, err := selection.Resolve(entries, []string{string(entries[0].ID) + ":1-4"}, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	patch, err := Synthesize(resolved, Forward)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	text := string(patch)
	if !strings.Contains(text, " package f") {
		t.Errorf("expected leading context the range covers to remain, got:\n%s", text)
	}
	if !strings.Contains(text, "-func Old() {}") || !strings.Contains(text, "+func New() {}") {
		t.Errorf("expected the change lines the range covers to remain, got:\n%s", text)
	}
	if strings.Contains(text, "Extra") {
		t.Errorf("expected the trailing add line excluded by the range to be dropped, got:\n%s", text)
	}
}

func TestSynthesizeFullWidthRangeMatchesWholeHunk(t *testing.T) {
	entries := parseEntries(t, twoHunkDiff)

	whole, err := selection.Resolve(entries, []string{string(entries[0].ID)}, "")
	if err != nil {
		t.Fatalf("Resolve whole failed: %v", err)
	}
	wholePatch, err := Synthesize(whole, Forward)
	if err != nil {
		t.Fatalf("Synthesize whole failed: %v", err)
	}

	ranged, err := selection.Resolve(entries, []string{string(entries[0].ID) + ":1-5"}, "")
	if err != nil {
		t.Fatalf("Resolve ranged failed: %v", err)
	}
	rangedPatch, err := Synthesize(ranged, Forward)
	if err != nil {
		t.Fatalf("Synthesize ranged failed: %v", err)
	}

	if string(wholePatch) != string(rangedPatch) {
		t.Errorf("expected a range spanning the full display width to match whole-hunk selection\nwhole:\n%s\nranged:\n%s", wholePatch, rangedPatch)
	}
}

func TestSynthesizeByteExactWholeFile(t *testing.T) {
	entries := parseEntries(t, twoHunkDiff)
	var refs []string
	for _, e := range entries {
		refs = append(refs, string(e.ID))
	}
	resolved, err := selection.Resolve(entries, refs, "")
	require.NoError(t, err)

	patch, err := Synthesize(resolved, Forward)
	require.NoError(t, err)
	require.Equal(t, twoHunkDiff, string(patch), "selecting every hunk should reproduce the source byte-for-byte")
}
