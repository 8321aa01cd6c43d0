// Package synth is the patch synthesiser: it turns a Selection into a
// byte-exact sub-patch that git will accept via `git apply`/
// `apply --cached`/`apply --reverse`.
package synth

import (
	"fmt"

	"github.com/cwarden/git-surgeon/internal/diffparse"
	"github.com/cwarden/git-surgeon/internal/selection"
)

// Direction picks which `git apply` invocation the emitted patch is meant
// for, since the forward and reverse cases need the same line-conversion
// rule but opposite apply directions.
type Direction int

const (
	// Forward is used for stage, commit, and split's pick groups: the
	// emitted patch is fed to a forward `git apply`, so excluded '+'
	// lines are dropped and excluded '-' lines become context.
	Forward Direction = iota

	// Reverse is used for unstage, discard, undo, and undo-file: the
	// patch has the same shape as Forward but is fed to
	// `git apply --reverse`, which performs the inversion itself, so the
	// emitted old/new coordinates are unchanged.
	Reverse
)

// ErrEmptySelection is returned when a synthesised patch would contain no
// change lines at all.
var ErrEmptySelection = fmt.Errorf("selection is empty")

// Synthesize builds a byte-exact sub-patch from a selection of
// (Hunk, optional line ranges) pairs against their owning files. Hunks not
// selected are omitted; files with no selected hunks are omitted entirely.
func Synthesize(selected []selection.Resolved, dir Direction) ([]byte, error) {
	byFile := make(map[string][]selection.Resolved)
	var fileOrder []string
	for _, r := range selected {
		key := r.Entry.File.Path()
		if _, ok := byFile[key]; !ok {
			fileOrder = append(fileOrder, key)
		}
		byFile[key] = append(byFile[key], r)
	}

	var out []byte
	anyChange := false

	for _, key := range fileOrder {
		rs := byFile[key]
		fp := rs[0].Entry.File

		var hunkBytes []byte
		for _, r := range rs {
			h, ok, err := rewriteHunk(r, dir)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			anyChange = true
			hunkBytes = append(hunkBytes, h.Bytes()...)
		}

		if len(hunkBytes) == 0 {
			continue
		}
		out = append(out, fp.HeaderRaw...)
		out = append(out, hunkBytes...)
	}

	if !anyChange {
		return nil, ErrEmptySelection
	}
	return out, nil
}

// rewriteHunk produces the hunk to emit for one Resolved selection. ok is
// false when the rewritten hunk would have no change lines left, in which
// case the hunk is dropped from the output entirely.
func rewriteHunk(r selection.Resolved, dir Direction) (diffparse.Hunk, bool, error) {
	if r.Ranges == nil {
		return wholeHunk(r.Hunk), hasChange(r.Hunk.Lines), nil
	}
	return restrictHunk(r), hasChange(restrictedLines(r, dir)), nil
}

func wholeHunk(h diffparse.Hunk) diffparse.Hunk {
	return h
}

func hasChange(lines []diffparse.Line) bool {
	for _, l := range lines {
		if l.Kind == diffparse.Add || l.Kind == diffparse.Del {
			return true
		}
	}
	return false
}

// restricted is one output line of the exclude-rewrite plus whether the
// display line it came from was itself selected by the range, so
// restrictHunk knows which leading/trailing context to trim without
// re-deriving it from line Kind.
type restricted struct {
	line     diffparse.Line
	selected bool
}

// restrictedFull applies the exclude-rewrite rule to a hunk's lines:
// excluded '+' lines are dropped, excluded '-' lines become context,
// everything else (context lines, included '+'/'-' lines) is kept as-is.
//
// selected marks which output lines bound the window restrictHunk keeps:
// a genuine context line is only a boundary candidate when the range
// includes it, but a '-' line can never simply vanish (dropping it would
// silently change which old-file lines the hunk covers), so it always
// counts as selected, whether the range included it as a deletion or it
// was converted to context. Only a run of originally-excluded context
// lines at the leading or trailing edge is eligible for trimming.
func restrictedFull(r selection.Resolved, dir Direction) []restricted {
	_ = dir // the rewrite rule is the same for Forward and Reverse; only
	// the caller (git apply vs git apply --reverse) differs.
	var out []restricted
	for i, l := range r.Hunk.Lines {
		display := i + 1
		included := r.Includes(display)

		switch l.Kind {
		case diffparse.Context:
			out = append(out, restricted{line: l, selected: included})
		case diffparse.Add:
			if included {
				out = append(out, restricted{line: l, selected: true})
			}
			// excluded '+' lines are dropped entirely
		case diffparse.Del:
			if included {
				out = append(out, restricted{line: l, selected: true})
			} else {
				converted := l
				converted.Kind = diffparse.Context
				converted.Raw = append([]byte(nil), converted.Raw...)
				converted.Raw[0] = byte(diffparse.Context)
				out = append(out, restricted{line: converted, selected: true})
			}
		}
	}
	return out
}

// restrictedLines is restrictedFull with the selected flag stripped, for
// the hasChange check, which only cares about surviving change lines.
func restrictedLines(r selection.Resolved, dir Direction) []diffparse.Line {
	full := restrictedFull(r, dir)
	lines := make([]diffparse.Line, len(full))
	for i, rl := range full {
		lines[i] = rl.line
	}
	return lines
}

// restrictHunk rewrites a hunk to its selected display-line subset,
// recomputing old_start/new_start (offset by trimmed leading context),
// old_count/new_count, and dropping only the leading/trailing context that
// falls outside the selected window. Context lines within that window —
// including ones the range explicitly covers — are kept as context, so a
// range spanning a hunk's full display width reproduces the whole hunk.
func restrictHunk(r selection.Resolved) diffparse.Hunk {
	full := restrictedFull(r, Forward)

	first, last := -1, -1
	for i, rl := range full {
		if rl.selected {
			if first == -1 {
				first = i
			}
			last = i
		}
	}

	trimmed := make([]diffparse.Line, last-first+1)
	for i := range trimmed {
		trimmed[i] = full[first+i].line
	}

	var leading []diffparse.Line
	for i := 0; i < first; i++ {
		leading = append(leading, full[i].line)
	}

	oldStart := r.Hunk.OldStart + countOld(leading)
	newStart := r.Hunk.NewStart + countNew(leading)

	var oldCount, newCount int
	for _, l := range trimmed {
		switch l.Kind {
		case diffparse.Context:
			oldCount++
			newCount++
		case diffparse.Del:
			oldCount++
		case diffparse.Add:
			newCount++
		}
	}

	return diffparse.Hunk{
		OldStart:         oldStart,
		OldCount:         oldCount,
		NewStart:         newStart,
		NewCount:         newCount,
		FuncContext:      r.Hunk.FuncContext,
		HeaderHasNewline: true,
		OldPath:          r.Hunk.OldPath,
		NewPath:          r.Hunk.NewPath,
		Lines:            trimmed,
	}
}

func countOld(lines []diffparse.Line) int {
	n := 0
	for _, l := range lines {
		if l.Kind == diffparse.Context || l.Kind == diffparse.Del {
			n++
		}
	}
	return n
}

func countNew(lines []diffparse.Line) int {
	n := 0
	for _, l := range lines {
		if l.Kind == diffparse.Context || l.Kind == diffparse.Add {
			n++
		}
	}
	return n
}
