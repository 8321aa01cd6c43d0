package selection

import (
	"testing"

	"github.com/cwarden/git-surgeon/internal/diffparse"
	"github.com/cwarden/git-surgeon/internal/hunklist"
)

func makeEntries(n int) []hunklist.Entry {
	var lines []diffparse.Line
	for i := 0; i < n; i++ {
		lines = append(lines, diffparse.Line{Kind: diffparse.Context, Raw: []byte(" line"), HasNewline: true})
	}
	fp := diffparse.FilePatch{NewPath: "f.go", Status: diffparse.Modified}
	h := diffparse.Hunk{NewPath: "f.go", Lines: lines}
	return hunklist.Build([]diffparse.FilePatch{{OldPath: fp.OldPath, NewPath: fp.NewPath, Status: fp.Status, Hunks: []diffparse.Hunk{h}}})
}

func TestParseRangesBareAndDash(t *testing.T) {
	ranges, err := ParseRanges("3,5-7,9")
	if err != nil {
		t.Fatalf("ParseRanges failed: %v", err)
	}
	want := []LineRange{{3, 3}, {5, 7}, {9, 9}}
	if len(ranges) != len(want) {
		t.Fatalf("expected %d ranges, got %d", len(want), len(ranges))
	}
	for i, r := range want {
		if ranges[i] != r {
			t.Errorf("range %d: got %+v, want %+v", i, ranges[i], r)
		}
	}
}

func TestParseRangesInverted(t *testing.T) {
	if _, err := ParseRanges("5-3"); err == nil {
		t.Errorf("expected inverted range to error")
	}
}

func TestParseRef(t *testing.T) {
	id, ranges, err := ParseRef("a1b2c3d:1-2,4")
	if err != nil {
		t.Fatalf("ParseRef failed: %v", err)
	}
	if id != "a1b2c3d" {
		t.Errorf("expected id a1b2c3d, got %q", id)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
}

func TestResolveWholeHunk(t *testing.T) {
	entries := makeEntries(5)
	id := string(entries[0].ID)

	resolved, err := Resolve(entries, []string{id}, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved entry, got %d", len(resolved))
	}
	if resolved[0].Ranges != nil {
		t.Errorf("expected whole-hunk selection to have nil ranges")
	}
	if !resolved[0].Includes(1) || !resolved[0].Includes(5) {
		t.Errorf("expected whole-hunk selection to include every line")
	}
}

func TestResolveMergesRepeatedID(t *testing.T) {
	entries := makeEntries(10)
	id := string(entries[0].ID)

	resolved, err := Resolve(entries, []string{id + ":1-2", id + ":4-5"}, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected repeated-id refs to merge into 1 entry, got %d", len(resolved))
	}
	if !resolved[0].Includes(2) || !resolved[0].Includes(4) {
		t.Errorf("expected merged ranges to include 2 and 4")
	}
	if resolved[0].Includes(3) {
		t.Errorf("expected merged ranges to exclude 3")
	}
}

func TestResolveOverlappingRangesRejected(t *testing.T) {
	entries := makeEntries(10)
	id := string(entries[0].ID)

	_, err := Resolve(entries, []string{id + ":1-4", id + ":3-5"}, "")
	if err == nil {
		t.Errorf("expected overlapping ranges to be rejected")
	}
}

func TestResolveOutOfRangeRejected(t *testing.T) {
	entries := makeEntries(3)
	id := string(entries[0].ID)

	_, err := Resolve(entries, []string{id + ":1-9"}, "")
	if err == nil {
		t.Errorf("expected out-of-range line to be rejected")
	}
}

func TestResolveUnknownID(t *testing.T) {
	entries := makeEntries(3)
	_, err := Resolve(entries, []string{"0000000"}, "")
	if err == nil {
		t.Errorf("expected unknown hunk id to be rejected")
	}
}

func TestResolveLinesFlag(t *testing.T) {
	entries := makeEntries(5)
	id := string(entries[0].ID)

	resolved, err := Resolve(entries, []string{id}, "2-3")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved[0].Includes(1) || !resolved[0].Includes(2) || !resolved[0].Includes(3) {
		t.Errorf("expected --lines 2-3 to restrict to lines 2 and 3 only")
	}
}

func TestResolveLinesFlagRejectsMultipleRefs(t *testing.T) {
	entries := makeEntries(5)
	id := string(entries[0].ID)
	_, err := Resolve(entries, []string{id, id}, "1-2")
	if err == nil {
		t.Errorf("expected --lines with multiple refs to be rejected")
	}
}
