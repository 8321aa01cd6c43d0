package skill

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderParseRoundTrip(t *testing.T) {
	fm := Frontmatter{Name: "git-surgeon", Description: "stage and commit hunks"}
	body := "# Heading\n\nSome body text.\n"

	doc, err := Render(fm, body)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(string(doc), "---\n") {
		t.Fatalf("expected doc to open with frontmatter delimiter, got:\n%s", doc)
	}

	gotFM, gotBody, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if gotFM != fm {
		t.Errorf("frontmatter mismatch: got %+v, want %+v", gotFM, fm)
	}
	if gotBody != strings.TrimRight(body, "\n")+"\n" {
		t.Errorf("body mismatch: got %q, want %q", gotBody, body)
	}
}

func TestParseRejectsMissingFrontmatter(t *testing.T) {
	_, _, err := Parse([]byte("# just a heading\n"))
	if err == nil {
		t.Errorf("expected missing frontmatter to error")
	}
}

func TestParseRejectsUnterminatedFrontmatter(t *testing.T) {
	_, _, err := Parse([]byte("---\nname: x\n"))
	if err == nil {
		t.Errorf("expected unterminated frontmatter block to error")
	}
}

func TestInstallWritesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "skills")

	path, err := Install(target, false)
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if filepath.Base(path) != FileName {
		t.Errorf("expected file named %q, got %q", FileName, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading installed file: %v", err)
	}
	fm, _, err := Parse(data)
	if err != nil {
		t.Fatalf("parsing installed file: %v", err)
	}
	if fm.Name != "git-surgeon" {
		t.Errorf("expected installed skill name git-surgeon, got %q", fm.Name)
	}
}

func TestInstallRefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()

	if _, err := Install(dir, false); err != nil {
		t.Fatalf("first Install failed: %v", err)
	}
	if _, err := Install(dir, false); err == nil {
		t.Errorf("expected second Install without --force to error")
	}
	if _, err := Install(dir, true); err != nil {
		t.Errorf("expected Install with force=true to succeed, got %v", err)
	}
}
