package surgeonconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected default config, got %+v", cfg)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	data := "preview_lines: 12\npreserve_author_default: false\n"
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PreviewLines != 12 {
		t.Errorf("expected PreviewLines 12, got %d", cfg.PreviewLines)
	}
	if cfg.PreserveAuthorDefault {
		t.Errorf("expected PreserveAuthorDefault false, got true")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	data := "preview_lines: 20\n"
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PreviewLines != 20 {
		t.Errorf("expected PreviewLines 20, got %d", cfg.PreviewLines)
	}
	if !cfg.PreserveAuthorDefault {
		t.Errorf("expected PreserveAuthorDefault to keep its default true value")
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	data := "preview_lines: [this is not a number\n"
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Errorf("expected malformed config to error")
	}
}
