// Package surgeonerr classifies the failure kinds an operation can raise
// so callers can decide whether to roll back, report, or leave the
// repository in a conflict state for the user to resolve by hand.
package surgeonerr

import "fmt"

// Kind is one of the seven failure classes an operation can raise.
type Kind int

const (
	// Environment covers a missing repository, a missing git binary, an
	// inaccessible worktree, or a git subprocess failure outside the
	// patch-apply/rebase paths (e.g. a commit hook rejecting a commit).
	Environment Kind = iota

	// Parse covers a malformed diff or unsupported per-file metadata
	// (rename/copy/mode-only change).
	Parse

	// Resolution covers an unknown hunk ID, an out-of-range line number,
	// overlapping ranges, or a selection that resolves to nothing.
	Resolution

	// Precondition covers a verb-specific precondition failing before any
	// mutation is attempted: non-empty index for commit, dirty worktree
	// for split, merge commits in a squash range without --force, a
	// squash target that isn't an ancestor of HEAD.
	Precondition

	// GitApply covers `git apply` rejecting a synthesised patch (context
	// mismatch).
	GitApply

	// GitRebase covers a conflict during the sequencer-driven verbs
	// (fixup, reword, split).
	GitRebase

	// Bug covers an internal invariant violation that should not occur.
	Bug
)

func (k Kind) String() string {
	switch k {
	case Environment:
		return "environment"
	case Parse:
		return "parse"
	case Resolution:
		return "resolution"
	case Precondition:
		return "precondition"
	case GitApply:
		return "git apply"
	case GitRebase:
		return "git rebase"
	case Bug:
		return "bug"
	default:
		return "unknown"
	}
}

// Error is the structured failure type every verb returns. Verb and IDs
// are included so the top-level CLI can print a message naming the
// offending command and hunks without re-deriving them.
type Error struct {
	Kind Kind
	Verb string
	IDs  []string

	// GitStderr holds the verbatim stderr of the git invocation that
	// failed, when the failure originated in git (GitApply, GitRebase,
	// and Environment failures of a git command). Included verbatim in Error() so a caller sees exactly
	// what git reported.
	GitStderr string

	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Verb, e.Err)
	if len(e.IDs) > 0 {
		msg = fmt.Sprintf("%s (%v)", msg, e.IDs)
	}
	if e.GitStderr != "" {
		msg = fmt.Sprintf("%s\n%s", msg, e.GitStderr)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err as a structured Error of the given kind for the named
// verb, with no hunk IDs attached.
func New(kind Kind, verb string, err error) *Error {
	return &Error{Kind: kind, Verb: verb, Err: err}
}

// WithIDs attaches the offending hunk IDs to an Error, returning a new
// value so callers can build the ID list after constructing the base
// error.
func (e *Error) WithIDs(ids ...string) *Error {
	e2 := *e
	e2.IDs = ids
	return &e2
}

// WithGitStderr attaches the verbatim stderr of the git command that
// produced the failure.
func (e *Error) WithGitStderr(stderr string) *Error {
	e2 := *e
	e2.GitStderr = stderr
	return &e2
}

// Environmentf builds an Environment-kind error for verb.
func Environmentf(verb, format string, a ...any) *Error {
	return New(Environment, verb, fmt.Errorf(format, a...))
}

// Preconditionf builds a Precondition-kind error for verb.
func Preconditionf(verb, format string, a ...any) *Error {
	return New(Precondition, verb, fmt.Errorf(format, a...))
}

// Resolutionf builds a Resolution-kind error for verb.
func Resolutionf(verb, format string, a ...any) *Error {
	return New(Resolution, verb, fmt.Errorf(format, a...))
}

// Bugf builds a Bug-kind error for verb, for an internal invariant that
// should not be reachable; the CLI prints these with a "please report"
// suffix.
func Bugf(verb, format string, a ...any) *Error {
	return New(Bug, verb, fmt.Errorf(format, a...))
}
