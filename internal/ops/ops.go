// Package ops executes the hunk-level verbs: it maps a verb name to a diff
// source, an apply direction, and a `git apply` invocation.
package ops

import (
	"fmt"

	"github.com/cwarden/git-surgeon/internal/diffparse"
	"github.com/cwarden/git-surgeon/internal/gitproc"
	"github.com/cwarden/git-surgeon/internal/hunklist"
	"github.com/cwarden/git-surgeon/internal/selection"
	"github.com/cwarden/git-surgeon/internal/surgeonerr"
	"github.com/cwarden/git-surgeon/internal/synth"
)

// Verb is one of git-surgeon's non-orchestration hunk operations.
type Verb string

const (
	Stage     Verb = "stage"
	Unstage   Verb = "unstage"
	Discard   Verb = "discard"
	Show      Verb = "show"
	UndoVerb     Verb = "undo"
	UndoFileVerb Verb = "undo-file"
)

// mode pairs a verb with the diff that feeds its hunk listing and the
// `git apply` flags that commit a selection back.
type mode struct {
	source    gitproc.Source
	applyArgs []string
	dir       synth.Direction
}

var modes = map[Verb]mode{
	Stage: {
		source:    gitproc.SourceWorktree,
		applyArgs: []string{"apply", "--cached", "--unidiff-zero"},
		dir:       synth.Forward,
	},
	Unstage: {
		source:    gitproc.SourceIndex,
		applyArgs: []string{"apply", "--cached", "--reverse", "--unidiff-zero"},
		dir:       synth.Reverse,
	},
	Discard: {
		source:    gitproc.SourceWorktree,
		applyArgs: []string{"apply", "--reverse", "--unidiff-zero"},
		dir:       synth.Reverse,
	},
}

// runApply invokes `git <applyArgs...>` with patch on stdin, translating a
// non-zero exit into a GitApply error carrying the verbatim stderr.
func runApply(repo *gitproc.Repository, verb string, patch []byte, applyArgs ...string) error {
	res, err := repo.Run(patch, applyArgs...)
	if err != nil {
		return surgeonerr.New(surgeonerr.GitApply, verb, err)
	}
	if res.ExitCode != 0 {
		return surgeonerr.New(surgeonerr.GitApply, verb, fmt.Errorf("git %v: exit %d", applyArgs, res.ExitCode)).WithGitStderr(res.Stderr)
	}
	return nil
}

// Lister loads the hunk listing a verb operates against: the worktree diff
// for stage/discard, the index diff for unstage, or a commit diff for
// undo/undo-file/show against a specific revision.
func Lister(repo *gitproc.Repository, source gitproc.Source, commit, path string) ([]hunklist.Entry, error) {
	diff, err := repo.Diff(source, commit, path)
	if err != nil {
		return nil, surgeonerr.Environmentf("hunks", "reading diff: %v", err)
	}
	patches, err := diffparse.Parse(diff)
	if err != nil {
		return nil, surgeonerr.New(surgeonerr.Parse, "hunks", err)
	}
	return hunklist.Build(patches), nil
}

// Run executes stage, unstage, or discard: resolve refs against the verb's
// own diff source, synthesise a sub-patch, and feed it to `git apply`.
func Run(repo *gitproc.Repository, verb Verb, refs []string, linesFlag, path string) error {
	m, ok := modes[verb]
	if !ok {
		return surgeonerr.Bugf(string(verb), "ops.Run does not handle verb %q", verb)
	}

	entries, err := Lister(repo, m.source, "", path)
	if err != nil {
		return err
	}

	resolved, err := selection.Resolve(entries, refs, linesFlag)
	if err != nil {
		return surgeonerr.New(surgeonerr.Resolution, string(verb), err)
	}

	patch, err := synth.Synthesize(resolved, m.dir)
	if err != nil {
		return surgeonerr.New(surgeonerr.Resolution, string(verb), err)
	}

	return runApply(repo, string(verb), patch, m.applyArgs...)
}

// Undo reverse-applies the sub-patch for refs taken from a specific
// commit's diff onto the worktree. A context mismatch — the surrounding
// lines have drifted since that commit — surfaces as a GitApply error
// without touching the worktree, since `git apply` fails atomically
// before writing anything.
func Undo(repo *gitproc.Repository, commit string, refs []string, linesFlag, path string) error {
	entries, err := Lister(repo, gitproc.SourceCommit, commit, path)
	if err != nil {
		return err
	}

	resolved, err := selection.Resolve(entries, refs, linesFlag)
	if err != nil {
		return surgeonerr.New(surgeonerr.Resolution, "undo", err)
	}

	patch, err := synth.Synthesize(resolved, synth.Reverse)
	if err != nil {
		return surgeonerr.New(surgeonerr.Resolution, "undo", err)
	}

	return runApply(repo, "undo", patch, "apply", "--reverse", "--unidiff-zero")
}

// UndoFile is Undo restricted to every hunk touching a single path.
func UndoFile(repo *gitproc.Repository, commit, path string) error {
	entries, err := Lister(repo, gitproc.SourceCommit, commit, path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return surgeonerr.Resolutionf("undo-file", "no hunks touch %s in %s", path, commit)
	}

	var refs []string
	for _, e := range entries {
		refs = append(refs, string(e.ID))
	}

	resolved, err := selection.Resolve(entries, refs, "")
	if err != nil {
		return surgeonerr.New(surgeonerr.Resolution, "undo-file", err)
	}

	patch, err := synth.Synthesize(resolved, synth.Reverse)
	if err != nil {
		return surgeonerr.New(surgeonerr.Resolution, "undo-file", err)
	}

	return runApply(repo, "undo-file", patch, "apply", "--reverse", "--unidiff-zero")
}
