// Package diffparse turns the bytes of a unified diff, exactly as git
// emits them, into an ordered sequence of FilePatch values. The parser
// slices rather than rewrites: every byte of the input ends up owned by
// exactly one FilePatch/Hunk/Line, so re-serialising the parsed sequence
// reproduces the input byte-for-byte.
package diffparse

import "fmt"

// Status is a FilePatch's content-change shape. Renames, copies, and
// mode-only changes are rejected at parse time rather than represented
// here.
type Status int

const (
	Modified Status = iota
	Added
	Deleted
)

func (s Status) String() string {
	switch s {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	default:
		return "modified"
	}
}

// FilePatch is one `diff --git` section of a unified diff.
type FilePatch struct {
	OldPath string
	NewPath string
	Status  Status

	// HeaderRaw holds the verbatim header bytes: the `diff --git` line,
	// any `index`/mode lines, and the `---`/`+++` lines, exactly as they
	// appeared in the source, trailing newlines included.
	HeaderRaw []byte

	Hunks []Hunk
}

// Path is the file's effective path for display and for hunk-identity
// purposes: the new path, except for deletions, which use the old path.
func (fp FilePatch) Path() string {
	if fp.Status == Deleted {
		return fp.OldPath
	}
	return fp.NewPath
}

// Bytes reproduces this FilePatch's exact original byte span.
func (fp FilePatch) Bytes() []byte {
	var out []byte
	out = append(out, fp.HeaderRaw...)
	for _, h := range fp.Hunks {
		out = append(out, h.Bytes()...)
	}
	return out
}

// LineKind tags a hunk line as unchanged context, an addition, or a
// deletion.
type LineKind byte

const (
	Context LineKind = ' '
	Add     LineKind = '+'
	Del     LineKind = '-'
)

func (k LineKind) String() string {
	switch k {
	case Add:
		return "add"
	case Del:
		return "del"
	default:
		return "context"
	}
}

// Marker represents a `\ No newline at end of file` line attached to the
// line immediately preceding it.
type Marker struct {
	Raw         []byte // the marker text itself, e.g. `\ No newline at end of file`
	HasNewline  bool   // whether the marker line itself ends with \n in the source
}

func (m *Marker) Bytes() []byte {
	if m == nil {
		return nil
	}
	out := append([]byte(nil), m.Raw...)
	if m.HasNewline {
		out = append(out, '\n')
	}
	return out
}

// Line is a single record of a hunk body: one context, addition, or
// deletion line, carrying its raw payload bytes untouched.
type Line struct {
	Kind LineKind

	// Raw is the full original line bytes including the leading sigil
	// (' ', '+', or '-') but excluding any line terminator.
	Raw []byte

	// HasNewline reports whether this line was followed by \n in the
	// source. False only for a line at the literal end of the input
	// buffer with no trailing newline and no "No newline" marker line
	// following it (a malformed-but-tolerated tail).
	HasNewline bool

	// NoNewline is set when a `\ No newline at end of file` marker
	// immediately follows this line in the source.
	NoNewline *Marker
}

// Content is the line's payload without its leading sigil.
func (l Line) Content() []byte {
	if len(l.Raw) == 0 {
		return nil
	}
	return l.Raw[1:]
}

// Bytes reproduces this line's exact original byte span, including any
// attached no-newline marker.
func (l Line) Bytes() []byte {
	out := append([]byte(nil), l.Raw...)
	if l.HasNewline {
		out = append(out, '\n')
	}
	out = append(out, l.NoNewline.Bytes()...)
	return out
}

// Hunk is a single `@@` region of a FilePatch.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int

	// FuncContext is the text after the closing `@@`, preserved verbatim
	// including its leading space, if any.
	FuncContext string

	// HeaderHasNewline records whether the original `@@ ... @@` line was
	// newline-terminated (always true except for a hunk header that is
	// literally the last byte of the whole diff, which cannot happen
	// since a header is always followed by at least one body line, but
	// kept for symmetry with Line.HasNewline).
	HeaderHasNewline bool

	OldPath, NewPath string

	Lines []Line
}

// HeaderBytes recomputes the `@@ -a[,b] +c[,d] @@suffix` line from the
// hunk's fields. This is the single formatting rule used both to
// reproduce a freshly-parsed hunk's header byte-for-byte and to emit a
// rewritten header after line-range synthesis.
func (h Hunk) HeaderBytes() []byte {
	s := fmt.Sprintf("@@ -%d", h.OldStart)
	if h.OldCount != 1 {
		s += fmt.Sprintf(",%d", h.OldCount)
	}
	s += fmt.Sprintf(" +%d", h.NewStart)
	if h.NewCount != 1 {
		s += fmt.Sprintf(",%d", h.NewCount)
	}
	s += " @@" + h.FuncContext
	out := []byte(s)
	if h.HeaderHasNewline {
		out = append(out, '\n')
	}
	return out
}

// Bytes reproduces this hunk's exact original byte span (header plus every
// line, including attached no-newline markers).
func (h Hunk) Bytes() []byte {
	out := h.HeaderBytes()
	for _, l := range h.Lines {
		out = append(out, l.Bytes()...)
	}
	return out
}

// FingerprintPayload is the byte sequence hunk identity hashes over: each
// line's raw bytes (sigil included), each followed by a '\n' byte,
// concatenated in order, excluding the `@@` header and function-context
// suffix.
func (h Hunk) FingerprintPayload() []byte {
	var out []byte
	for _, l := range h.Lines {
		out = append(out, l.Raw...)
		out = append(out, '\n')
	}
	return out
}

// ParseError reports a rejection at parse time: malformed diff text or
// unsupported per-file metadata (rename/copy/mode-only changes).
type ParseError struct {
	File string
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	}
	return e.Msg
}
