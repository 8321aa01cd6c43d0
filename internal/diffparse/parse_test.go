package diffparse

import "testing"

const sampleDiff = `diff --git a/foo.go b/foo.go
index 1111111..2222222 100644
--- a/foo.go
+++ b/foo.go
@@ -1,3 +1,4 @@
 package foo
 
-func Old() {}
+func New() {}
+func Extra() {}
`

func TestParseRoundTrip(t *testing.T) {
	patches, err := Parse([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(patches))
	}

	var out []byte
	for _, fp := range patches {
		out = append(out, fp.Bytes()...)
	}
	if string(out) != sampleDiff {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", out, sampleDiff)
	}
}

func TestParsePaths(t *testing.T) {
	patches, err := Parse([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fp := patches[0]
	if fp.OldPath != "foo.go" || fp.NewPath != "foo.go" {
		t.Errorf("expected clean paths, got old=%q new=%q", fp.OldPath, fp.NewPath)
	}
	if fp.Status != Modified {
		t.Errorf("expected Modified status, got %v", fp.Status)
	}
}

func TestParseAddedFile(t *testing.T) {
	diff := `diff --git a/new.go b/new.go
new file mode 100644
index 0000000..1111111
--- /dev/null
+++ b/new.go
@@ -0,0 +1,2 @@
+package new
+func F() {}
`
	patches, err := Parse([]byte(diff))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fp := patches[0]
	if fp.Status != Added {
		t.Errorf("expected Added status, got %v", fp.Status)
	}
	if fp.OldPath != "/dev/null" {
		t.Errorf("expected old path /dev/null, got %q", fp.OldPath)
	}
	if fp.NewPath != "new.go" {
		t.Errorf("expected new path new.go, got %q", fp.NewPath)
	}

	var out []byte
	out = append(out, fp.Bytes()...)
	if string(out) != diff {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", out, diff)
	}
}

func TestParseNoNewlineMarker(t *testing.T) {
	diff := "diff --git a/f b/f\n" +
		"index 1111111..2222222 100644\n" +
		"--- a/f\n" +
		"+++ b/f\n" +
		"@@ -1 +1 @@\n" +
		"-old\n" +
		"\\ No newline at end of file\n" +
		"+new\n" +
		"\\ No newline at end of file\n"

	patches, err := Parse([]byte(diff))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fp := patches[0]
	if len(fp.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(fp.Hunks))
	}
	h := fp.Hunks[0]
	if len(h.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(h.Lines))
	}
	if h.Lines[0].NoNewline == nil {
		t.Errorf("expected del line to carry a no-newline marker")
	}
	if h.Lines[1].NoNewline == nil {
		t.Errorf("expected add line to carry a no-newline marker")
	}

	if string(fp.Bytes()) != diff {
		t.Errorf("round trip mismatch:\ngot:\n%q\nwant:\n%q", fp.Bytes(), diff)
	}
}

func TestParseRejectsRename(t *testing.T) {
	diff := `diff --git a/old.go b/new.go
similarity index 100%
rename from old.go
rename to new.go
`
	_, err := Parse([]byte(diff))
	if err == nil {
		t.Fatalf("expected rename to be rejected")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.File == "" {
		t.Errorf("expected ParseError to name a file")
	}
}

func TestParseRejectsCountMismatch(t *testing.T) {
	diff := `diff --git a/f b/f
index 1111111..2222222 100644
--- a/f
+++ b/f
@@ -1,5 +1,1 @@
 line
+added
`
	_, err := Parse([]byte(diff))
	if err == nil {
		t.Fatalf("expected header/body count mismatch to be rejected")
	}
}

func TestMultipleFilePatches(t *testing.T) {
	diff := sampleDiff + `diff --git a/bar.go b/bar.go
index 3333333..4444444 100644
--- a/bar.go
+++ b/bar.go
@@ -1,1 +1,1 @@
-old bar
+new bar
`
	patches, err := Parse([]byte(diff))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(patches) != 2 {
		t.Fatalf("expected 2 patches, got %d", len(patches))
	}

	var out []byte
	for _, fp := range patches {
		out = append(out, fp.Bytes()...)
	}
	if string(out) != diff {
		t.Errorf("round trip mismatch across multiple files")
	}
}
