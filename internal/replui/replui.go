// Package replui is the interactive fallback for a human walking hunks one
// at a time with a y/n/q/a/d prompt loop, driven by
// github.com/chzyer/readline and staging through the same executor the
// non-interactive verbs use.
package replui

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cwarden/git-surgeon/internal/gitproc"
	"github.com/cwarden/git-surgeon/internal/hunklist"
	"github.com/cwarden/git-surgeon/internal/ops"
)

const help = `y - stage this hunk
n - do not stage this hunk
q - quit; do not stage this hunk or any remaining ones
a - stage this hunk and all later hunks in the file
d - do not stage this hunk or any later hunk in the file
? - print this help
`

// Run walks the worktree's hunk listing, prompting the user for each hunk
// with the y/n/q/a/d vocabulary above, and stages the ones accepted.
func Run(repo *gitproc.Repository, out io.Writer) error {
	entries, err := ops.Lister(repo, gitproc.SourceWorktree, "", "")
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no hunks to stage")
		return nil
	}

	rl, err := readline.New("Stage this hunk [y,n,q,a,d,?]? ")
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	var staged []string
	fileDeclined := make(map[string]bool)
	fileAccepted := make(map[string]bool)

hunks:
	for _, e := range entries {
		path := e.File.Path()
		if fileDeclined[path] {
			continue
		}

		if fileAccepted[path] {
			staged = append(staged, string(e.ID))
			continue
		}

		fmt.Fprintf(out, "%s  %s\n", e.ID, path)
		fmt.Fprint(out, previewHunk(e))

		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			switch strings.TrimSpace(line) {
			case "y":
				staged = append(staged, string(e.ID))
			case "n":
				// skip
			case "q":
				break hunks
			case "a":
				fileAccepted[path] = true
				staged = append(staged, string(e.ID))
			case "d":
				fileDeclined[path] = true
			case "?", "":
				fmt.Fprint(out, help)
				continue
			default:
				fmt.Fprintf(out, "unrecognized response %q\n", line)
				continue
			}
			break
		}
	}

	if len(staged) == 0 {
		fmt.Fprintln(out, "no hunks staged")
		return nil
	}
	if err := ops.Run(repo, ops.Stage, staged, "", ""); err != nil {
		return err
	}
	fmt.Fprintf(out, "staged %d hunk(s)\n", len(staged))
	return nil
}

func previewHunk(e hunklist.Entry) string {
	var b strings.Builder
	for _, l := range e.Hunk.Lines {
		b.WriteString("  ")
		b.Write(l.Raw)
		b.WriteString("\n")
	}
	return b.String()
}
