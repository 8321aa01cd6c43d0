// Package surgeonconfig loads the optional .git-surgeon.yml repo-root
// config file: a preview-line budget for the hunks listing and a default
// for squash's author-preservation behavior. A missing file yields
// Default(). The author-preservation default is overridable per call by
// squash's --no-preserve-author flag; the preview-line budget has no flag.
package surgeonconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the parsed shape of .git-surgeon.yml.
type Config struct {
	// PreviewLines caps how many lines of a hunk's body the `hunks`
	// listing prints before truncating with a "... (+K more lines)"
	// summary.
	PreviewLines int `yaml:"preview_lines"`

	// PreserveAuthorDefault is squash's default for author/date
	// preservation absent an explicit --no-preserve-author flag.
	PreserveAuthorDefault bool `yaml:"preserve_author_default"`
}

// Default is used when no config file exists.
func Default() Config {
	return Config{PreviewLines: 6, PreserveAuthorDefault: true}
}

const fileName = ".git-surgeon.yml"

// Load reads .git-surgeon.yml from repoRoot, falling back to Default when
// the file is absent. A malformed file is an error; a missing one is not.
func Load(repoRoot string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(repoRoot, fileName))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
