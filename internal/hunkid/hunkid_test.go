package hunkid

import (
	"testing"

	"github.com/cwarden/git-surgeon/internal/diffparse"
)

func line(kind diffparse.LineKind, content string) diffparse.Line {
	return diffparse.Line{Kind: kind, Raw: append([]byte{byte(kind)}, content...), HasNewline: true}
}

func TestAssignBareForUniqueHunks(t *testing.T) {
	hunks := []diffparse.Hunk{
		{NewPath: "a.go", Lines: []diffparse.Line{line(diffparse.Add, "one")}},
		{NewPath: "b.go", Lines: []diffparse.Line{line(diffparse.Add, "two")}},
	}
	ids := Assign(hunks)
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	for _, id := range ids {
		if len(id) != prefixLen {
			t.Errorf("expected bare id of length %d, got %q", prefixLen, id)
		}
	}
	if ids[0] == ids[1] {
		t.Errorf("expected distinct ids for distinct content, got %q twice", ids[0])
	}
}

func TestAssignCollisionSuffix(t *testing.T) {
	hunks := []diffparse.Hunk{
		{NewPath: "a.go", Lines: []diffparse.Line{line(diffparse.Add, "use std::collections::HashMap;")}},
		{NewPath: "a.go", Lines: []diffparse.Line{line(diffparse.Add, "use std::collections::HashMap;")}},
	}
	ids := Assign(hunks)
	if ids[0] != ids[0][:prefixLen] {
		t.Fatalf("expected first id bare, got %q", ids[0])
	}
	want := string(ids[0]) + "-2"
	if string(ids[1]) != want {
		t.Errorf("expected second id %q, got %q", want, ids[1])
	}
}

func TestAssignDeterministic(t *testing.T) {
	hunks := []diffparse.Hunk{
		{NewPath: "a.go", Lines: []diffparse.Line{line(diffparse.Context, "unchanged"), line(diffparse.Add, "x")}},
	}
	first := Assign(hunks)
	second := Assign(hunks)
	if first[0] != second[0] {
		t.Errorf("expected deterministic id, got %q then %q", first[0], second[0])
	}
}

func TestAssignStableAcrossUnrelatedHunks(t *testing.T) {
	target := diffparse.Hunk{NewPath: "a.go", Lines: []diffparse.Line{line(diffparse.Add, "target")}}
	without := []diffparse.Hunk{target}
	with := []diffparse.Hunk{
		{NewPath: "a.go", Lines: []diffparse.Line{line(diffparse.Add, "unrelated above")}},
		target,
		{NewPath: "a.go", Lines: []diffparse.Line{line(diffparse.Add, "unrelated below")}},
	}

	idWithout := Assign(without)[0]
	idWith := Assign(with)[1]
	if idWithout != idWith {
		t.Errorf("expected hunk id stable across unrelated insertions, got %q vs %q", idWithout, idWith)
	}
}

func TestFingerprintDeletedFileUsesOldPath(t *testing.T) {
	deleted := diffparse.Hunk{
		OldPath: "gone.go",
		NewPath: "/dev/null",
		Lines:   []diffparse.Line{line(diffparse.Del, "bye")},
	}
	renamedAway := diffparse.Hunk{
		OldPath: "gone.go",
		NewPath: "gone.go",
		Lines:   []diffparse.Line{line(diffparse.Del, "bye")},
	}
	if Fingerprint(deleted) != Fingerprint(renamedAway) {
		t.Errorf("expected a deleted file's fingerprint to hash under its old path, same as a modified file with that path")
	}

	other := diffparse.Hunk{
		OldPath: "other.go",
		NewPath: "/dev/null",
		Lines:   []diffparse.Line{line(diffparse.Del, "bye")},
	}
	if Fingerprint(deleted) == Fingerprint(other) {
		t.Errorf("expected deletions of different files to fingerprint differently despite sharing NewPath \"/dev/null\"")
	}
}

func TestLookup(t *testing.T) {
	hunks := []diffparse.Hunk{
		{NewPath: "a.go", Lines: []diffparse.Line{line(diffparse.Add, "one")}},
	}
	ids := Assign(hunks)
	idx, ok := Lookup(hunks, string(ids[0]))
	if !ok || idx != 0 {
		t.Fatalf("expected lookup to find index 0, got idx=%d ok=%v", idx, ok)
	}
	if _, ok := Lookup(hunks, "0000000"); ok {
		t.Errorf("expected lookup of unknown id to fail")
	}
}
