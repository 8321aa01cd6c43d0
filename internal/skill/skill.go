// Package skill implements the install-skill verb: writing the markdown
// file (with a YAML frontmatter block) that teaches an AI coding assistant
// how to drive git-surgeon's verb surface. This package owns only the
// frontmatter shape and the file placement, not the prose.
package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML block a skill markdown file opens with.
type Frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// FileName is the skill file's conventional name within the target
// directory.
const FileName = "git-surgeon.md"

// Render serialises frontmatter and body into one skill markdown document:
// a `---`-delimited YAML block followed by the body text.
func Render(fm Frontmatter, body string) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling skill frontmatter: %w", err)
	}
	var out strings.Builder
	out.WriteString("---\n")
	out.Write(yamlBytes)
	out.WriteString("---\n\n")
	out.WriteString(strings.TrimRight(body, "\n"))
	out.WriteString("\n")
	return []byte(out.String()), nil
}

// Parse splits a skill markdown document back into its frontmatter and
// body, used by `install-skill --check` to detect an already-installed
// skill of the same name.
func Parse(data []byte) (Frontmatter, string, error) {
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return Frontmatter{}, "", fmt.Errorf("skill file missing frontmatter block")
	}
	rest := text[4:]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return Frontmatter{}, "", fmt.Errorf("skill file frontmatter block not terminated")
	}
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return Frontmatter{}, "", fmt.Errorf("parsing skill frontmatter: %w", err)
	}
	body := strings.TrimPrefix(rest[end+len("\n---\n"):], "\n")
	return fm, body, nil
}

// Install writes the default git-surgeon skill document into destDir,
// creating the directory if needed. It refuses to overwrite an existing
// file unless force is set.
func Install(destDir string, force bool) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating skill directory: %w", err)
	}

	path := filepath.Join(destDir, FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	doc, err := Render(Frontmatter{
		Name:        "git-surgeon",
		Description: "Stage, unstage, discard, and commit individual diff hunks (or line ranges within a hunk) by stable ID, and rewrite history with fixup/reword/squash/split, without an interactive terminal.",
	}, defaultBody)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", fmt.Errorf("writing skill file: %w", err)
	}
	return path, nil
}

const defaultBody = `# git-surgeon

Use this tool instead of ` + "`git add -p`" + ` whenever you need to stage, commit, or
undo less than a whole file's worth of changes.

1. Run ` + "`git-surgeon hunks`" + ` (add ` + "`--staged`" + ` to inspect the index, ` + "`--file <path>`" + `
   to narrow to one file) to list every hunk with its stable ID and a
   preview.
2. Reference hunks by ID on any verb: ` + "`git-surgeon stage <id>`" + `, ` + "`unstage`" + `,
   ` + "`discard`" + `. Restrict to specific lines with ` + "`<id>:<start>-<end>`" + ` or
   ` + "`--lines <start>-<end> <id>`" + `.
3. ` + "`git-surgeon commit -m \"message\" <id>...`" + ` stages and commits in one
   call, rolling the index back if the commit itself fails.
4. History rewrites: ` + "`fixup <ref>`" + `, ` + "`reword -m ... <ref>`" + `,
   ` + "`squash -m ... <ref>`" + `, and ` + "`split <ref> --pick <ids> -m ... --rest-message ...`" + `.
   A rebase conflict is left for you to resolve with git's own
   ` + "`--continue`" + `/` + "`--abort`" + `.
5. ` + "`undo --from <commit> <id>`" + ` reverse-applies a hunk from an already-made
   commit onto the worktree; it fails cleanly if the surrounding lines have
   since drifted.

Except for ` + "`split`" + `, every verb reads its flags only before the first hunk ID
or commit ref; anything after that is taken as a further ID or ref.
`
