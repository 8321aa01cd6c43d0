// git-surgeon exposes git diff hunks as addressable, content-hash-identified
// units so non-interactive callers can do the selective staging that
// `git add -p` normally requires a human for.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwarden/git-surgeon/internal/diffparse"
	"github.com/cwarden/git-surgeon/internal/gitproc"
	"github.com/cwarden/git-surgeon/internal/hunklist"
	"github.com/cwarden/git-surgeon/internal/ops"
	"github.com/cwarden/git-surgeon/internal/orchestrator"
	"github.com/cwarden/git-surgeon/internal/replui"
	"github.com/cwarden/git-surgeon/internal/selection"
	"github.com/cwarden/git-surgeon/internal/skill"
	"github.com/cwarden/git-surgeon/internal/surgeonconfig"
	"github.com/cwarden/git-surgeon/internal/surgeonerr"
)

// nullWriter discards all writes; used to silence flag.FlagSet's default
// usage/error output so main prints its own uniform error format instead.
type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: git-surgeon <verb> [args]")
		return 1
	}

	repo, err := gitproc.Open(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := surgeonconfig.Load(repo.WorkTree())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	verb, rest := args[0], args[1:]
	switch verb {
	case "hunks":
		return cmdHunks(repo, cfg, rest)
	case "show":
		return cmdShow(repo, rest)
	case "stage":
		return cmdSelectionVerb(repo, ops.Stage, rest)
	case "unstage":
		return cmdSelectionVerb(repo, ops.Unstage, rest)
	case "discard":
		return cmdSelectionVerb(repo, ops.Discard, rest)
	case "commit":
		return cmdCommit(repo, rest)
	case "fixup":
		return cmdFixup(repo, rest)
	case "reword":
		return cmdReword(repo, rest)
	case "squash":
		return cmdSquash(repo, cfg, rest)
	case "split":
		return cmdSplit(repo, rest)
	case "undo":
		return cmdUndo(repo, rest)
	case "undo-file":
		return cmdUndoFile(repo, rest)
	case "install-skill":
		return cmdInstallSkill(rest)
	case "repl":
		if err := replui.Run(repo, os.Stdout); err != nil {
			return reportErr(err)
		}
		return 0
	case "status":
		return cmdStatus(repo)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown verb %q\n", verb)
		return 1
	}
}

// reportErr prints a failure to stderr and maps its error kind to the
// process exit code a calling agent can branch on without parsing text.
func reportErr(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var se *surgeonerr.Error
	if !errors.As(err, &se) {
		return 1
	}

	switch se.Kind {
	case surgeonerr.GitApply:
		return 3
	case surgeonerr.GitRebase, surgeonerr.Environment:
		return 2
	case surgeonerr.Bug:
		fmt.Fprintln(os.Stderr, "this is an internal error; please report it")
		return 1
	default:
		return 1
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(nullWriter{})
	return fs
}

func cmdHunks(repo *gitproc.Repository, cfg surgeonconfig.Config, args []string) int {
	fs := newFlagSet("hunks")
	staged := fs.Bool("staged", false, "read from the index instead of the worktree")
	file := fs.String("file", "", "restrict to one path")
	commit := fs.String("commit", "", "read from a commit")
	full := fs.Bool("full", false, "render every line numbered (requires --commit)")
	blame := fs.Bool("blame", false, "prefix context lines with the short SHA that introduced them")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	source := gitproc.SourceWorktree
	if *staged {
		source = gitproc.SourceIndex
	}
	if *commit != "" {
		source = gitproc.SourceCommit
	}

	entries, err := ops.Lister(repo, source, *commit, *file)
	if err != nil {
		return reportErr(err)
	}

	if *full && *commit != "" {
		fmt.Print(formatFull(entries))
		return 0
	}

	if *blame {
		fmt.Print(formatWithBlame(repo, entries))
		return 0
	}

	fmt.Print(formatListing(entries, cfg.PreviewLines))
	return 0
}

func formatListing(entries []hunklist.Entry, previewLines int) string {
	var out strings.Builder
	for _, e := range entries {
		added, removed := countChanges(e)
		out.WriteString(fmt.Sprintf("%s %s%s (+%d -%d)\n", e.ID, e.File.Path(), e.Hunk.FuncContext, added, removed))
		shown := 0
		for _, l := range e.Hunk.Lines {
			if shown >= previewLines {
				remaining := len(e.Hunk.Lines) - shown
				out.WriteString(fmt.Sprintf("  ... (+%d more lines)\n", remaining))
				break
			}
			out.WriteString("  ")
			out.Write(l.Raw)
			out.WriteString("\n")
			shown++
		}
	}
	return out.String()
}

// formatFull renders entries the way `hunks --full` does: every line of
// every selected hunk, numbered, with no restriction.
func formatFull(entries []hunklist.Entry) string {
	var out strings.Builder
	for _, e := range entries {
		writeNumberedHunk(&out, nil, "", e.Hunk, nil, false)
	}
	return out.String()
}

// writeNumberedHunk appends hunk's original header bytes followed by its
// lines, each prefixed with a 1-based decimal line number and a colon.
// When include is non-nil, only display lines passing it are printed,
// under their original number (never renumbered), so the output stays
// consistent with --lines addressing. When blame is set, each printed
// context line is additionally prefixed with the short SHA git blame
// attributes it to in path.
func writeNumberedHunk(out *strings.Builder, repo *gitproc.Repository, path string, h diffparse.Hunk, include func(int) bool, blame bool) {
	out.Write(h.HeaderBytes())

	var shas map[int]string
	if blame {
		var oldLines []int
		ln := h.OldStart
		for _, l := range h.Lines {
			if l.Kind == diffparse.Context {
				oldLines = append(oldLines, ln)
			}
			if l.Kind != diffparse.Add {
				ln++
			}
		}
		shas, _ = repo.BlameShortSHA(path, oldLines)
	}

	ln := h.OldStart
	for i, l := range h.Lines {
		display := i + 1
		if include == nil || include(display) {
			out.WriteString(fmt.Sprintf("%d: ", display))
			if blame && l.Kind == diffparse.Context {
				if sha, ok := shas[ln]; ok {
					out.WriteString(sha)
					out.WriteString(" ")
				}
			}
			out.Write(l.Raw)
			out.WriteString("\n")
		}
		if l.Kind != diffparse.Add {
			ln++
		}
	}
}

// formatWithBlame renders `hunks --blame`: one id/path summary line per
// hunk followed by its raw lines, each context line prefixed with the
// short SHA git blame attributes it to.
func formatWithBlame(repo *gitproc.Repository, entries []hunklist.Entry) string {
	var out strings.Builder
	for _, e := range entries {
		added, removed := countChanges(e)
		out.WriteString(fmt.Sprintf("%s %s (+%d -%d)\n", e.ID, e.File.Path(), added, removed))

		var oldLines []int
		ln := e.Hunk.OldStart
		for _, l := range e.Hunk.Lines {
			if l.Kind == diffparse.Context {
				oldLines = append(oldLines, ln)
			}
			if l.Kind != diffparse.Add {
				ln++
			}
		}
		shas, _ := repo.BlameShortSHA(e.File.Path(), oldLines)

		ln = e.Hunk.OldStart
		for _, l := range e.Hunk.Lines {
			prefix := "  "
			if l.Kind == diffparse.Context {
				if sha, ok := shas[ln]; ok {
					prefix = fmt.Sprintf("  %s ", sha)
				}
			}
			out.WriteString(prefix)
			out.Write(l.Raw)
			out.WriteString("\n")
			if l.Kind != diffparse.Add {
				ln++
			}
		}
	}
	return out.String()
}

func countChanges(e hunklist.Entry) (added, removed int) {
	for _, l := range e.Hunk.Lines {
		switch l.Kind {
		case diffparse.Add:
			added++
		case diffparse.Del:
			removed++
		}
	}
	return
}

func cmdShow(repo *gitproc.Repository, args []string) int {
	fs := newFlagSet("show")
	staged := fs.Bool("staged", false, "read from the index instead of the worktree")
	commit := fs.String("commit", "", "read from a commit")
	lines := fs.String("lines", "", "restrict to line ranges (single ref only)")
	blame := fs.Bool("blame", false, "prefix context lines with the short SHA that introduced them")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	refs := fs.Args()

	source := gitproc.SourceWorktree
	if *staged {
		source = gitproc.SourceIndex
	}
	if *commit != "" {
		source = gitproc.SourceCommit
	}

	entries, err := ops.Lister(repo, source, *commit, "")
	if err != nil {
		return reportErr(err)
	}
	resolved, err := selection.Resolve(entries, refs, *lines)
	if err != nil {
		return reportErr(surgeonerr.New(surgeonerr.Resolution, "show", err))
	}

	var out strings.Builder
	for _, r := range resolved {
		writeNumberedHunk(&out, repo, r.Entry.File.Path(), r.Hunk, r.Includes, *blame)
	}
	fmt.Print(out.String())
	return 0
}

func cmdSelectionVerb(repo *gitproc.Repository, verb ops.Verb, args []string) int {
	fs := newFlagSet(string(verb))
	lines := fs.String("lines", "", "restrict to line ranges (single ref only)")
	file := fs.String("file", "", "restrict listing to one path")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := ops.Run(repo, verb, fs.Args(), *lines, *file); err != nil {
		return reportErr(err)
	}
	return 0
}

func cmdCommit(repo *gitproc.Repository, args []string) int {
	fs := newFlagSet("commit")
	lines := fs.String("lines", "", "restrict to line ranges (single ref only)")
	var msgs multiFlag
	fs.Var(&msgs, "m", "commit message (repeatable)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := orchestrator.Commit(repo, fs.Args(), *lines, "", msgs); err != nil {
		return reportErr(err)
	}
	return 0
}

func cmdFixup(repo *gitproc.Repository, args []string) int {
	fs := newFlagSet("fixup")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: fixup requires exactly one target commit")
		return 1
	}
	if err := orchestrator.Fixup(repo, fs.Arg(0)); err != nil {
		return reportErr(err)
	}
	return 0
}

func cmdReword(repo *gitproc.Repository, args []string) int {
	fs := newFlagSet("reword")
	var msgs multiFlag
	fs.Var(&msgs, "m", "new commit message (repeatable)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: reword requires exactly one target commit")
		return 1
	}
	if err := orchestrator.Reword(repo, fs.Arg(0), msgs); err != nil {
		return reportErr(err)
	}
	return 0
}

func cmdSquash(repo *gitproc.Repository, cfg surgeonconfig.Config, args []string) int {
	fs := newFlagSet("squash")
	force := fs.Bool("force", false, "allow merge commits in range")
	noPreserveAuthor := fs.Bool("no-preserve-author", !cfg.PreserveAuthorDefault, "do not preserve the oldest commit's author/date")
	var msgs multiFlag
	fs.Var(&msgs, "m", "commit message (repeatable)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: squash requires exactly one target commit")
		return 1
	}
	if err := orchestrator.Squash(repo, fs.Arg(0), msgs, *force, *noPreserveAuthor); err != nil {
		return reportErr(err)
	}
	return 0
}

// cmdSplit parses its own argv by hand rather than through flag.FlagSet:
// --pick and -m must stay paired in the order the user gave them (a
// --pick's messages belong to that group, not the next one), which the
// flag package's per-name accumulation can't express.
func cmdSplit(repo *gitproc.Repository, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: split requires a target commit")
		return 1
	}
	commit := args[0]
	rest := args[1:]

	var groups []orchestrator.PickGroup
	var restMessage string

	i := 0
	for i < len(rest) {
		switch rest[i] {
		case "--pick":
			i++
			var refs []string
			for i < len(rest) && rest[i] != "-m" && rest[i] != "--pick" && rest[i] != "--rest-message" {
				refs = append(refs, rest[i])
				i++
			}
			group := orchestrator.PickGroup{Refs: refs}
			for i < len(rest) && rest[i] == "-m" {
				i++
				if i >= len(rest) {
					fmt.Fprintln(os.Stderr, "Error: -m requires a value")
					return 1
				}
				group.Messages = append(group.Messages, rest[i])
				i++
			}
			groups = append(groups, group)
		case "--rest-message":
			i++
			if i >= len(rest) {
				fmt.Fprintln(os.Stderr, "Error: --rest-message requires a value")
				return 1
			}
			restMessage = rest[i]
			i++
		default:
			fmt.Fprintf(os.Stderr, "Error: unexpected split argument %q\n", rest[i])
			return 1
		}
	}

	if len(groups) == 0 {
		fmt.Fprintln(os.Stderr, "Error: split requires at least one --pick group")
		return 1
	}

	if err := orchestrator.Split(repo, commit, groups, restMessage); err != nil {
		return reportErr(err)
	}
	return 0
}

func cmdUndo(repo *gitproc.Repository, args []string) int {
	fs := newFlagSet("undo")
	from := fs.String("from", "", "commit the hunk was committed in (required)")
	lines := fs.String("lines", "", "restrict to line ranges (single ref only)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *from == "" {
		fmt.Fprintln(os.Stderr, "Error: undo requires --from <commit>")
		return 1
	}
	if err := ops.Undo(repo, *from, fs.Args(), *lines, ""); err != nil {
		return reportErr(err)
	}
	return 0
}

func cmdUndoFile(repo *gitproc.Repository, args []string) int {
	fs := newFlagSet("undo-file")
	from := fs.String("from", "", "commit the file was changed in (required)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *from == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: undo-file requires --from <commit> <path>")
		return 1
	}
	if err := ops.UndoFile(repo, *from, fs.Arg(0)); err != nil {
		return reportErr(err)
	}
	return 0
}

func cmdInstallSkill(args []string) int {
	fs := newFlagSet("install-skill")
	dest := fs.String("dir", ".claude/skills/git-surgeon", "directory to install the skill document into")
	force := fs.Bool("force", false, "overwrite an existing skill document")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	path, err := skill.Install(*dest, *force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("installed %s\n", path)
	return 0
}

func cmdStatus(repo *gitproc.Repository) int {
	files, err := repo.ListModified()
	if err != nil {
		return reportErr(surgeonerr.New(surgeonerr.Environment, "status", err))
	}
	for _, f := range files {
		fmt.Printf("%-8s %-8s %s\n", f.Index, f.File, f.Path)
	}
	untracked, err := repo.ListUntracked()
	if err != nil {
		return reportErr(surgeonerr.New(surgeonerr.Environment, "status", err))
	}
	for _, u := range untracked {
		fmt.Printf("%-8s %-8s %s\n", "untracked", "untracked", u)
	}
	return 0
}

// multiFlag collects repeated -m values in order.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
