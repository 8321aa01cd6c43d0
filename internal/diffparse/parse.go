package diffparse

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// rawLine is one line sliced out of the input buffer: its bytes (sigil or
// header text, never including the terminator) and whether a terminator
// followed it in the source.
type rawLine struct {
	bytes      []byte
	hasNewline bool
}

// splitLines slices buf into rawLines without copying, preserving exactly
// which lines were newline-terminated so the parser never needs to guess
// at trailing-newline presence.
func splitLines(buf []byte) []rawLine {
	if len(buf) == 0 {
		return nil
	}
	var lines []rawLine
	for len(buf) > 0 {
		if idx := bytes.IndexByte(buf, '\n'); idx >= 0 {
			lines = append(lines, rawLine{bytes: buf[:idx], hasNewline: true})
			buf = buf[idx+1:]
		} else {
			lines = append(lines, rawLine{bytes: buf, hasNewline: false})
			buf = nil
		}
	}
	return lines
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)

// Parse decomposes unified-diff bytes into an ordered sequence of
// FilePatches.
func Parse(diff []byte) ([]FilePatch, error) {
	lines := splitLines(diff)

	var sections [][]rawLine
	var current []rawLine
	for _, l := range lines {
		if bytes.HasPrefix(l.bytes, []byte("diff --git ")) && len(current) > 0 {
			sections = append(sections, current)
			current = nil
		}
		current = append(current, l)
	}
	if len(current) > 0 {
		sections = append(sections, current)
	}

	var patches []FilePatch
	for _, section := range sections {
		fp, err := parseSection(section)
		if err != nil {
			return nil, err
		}
		patches = append(patches, fp)
	}
	return patches, nil
}

func parseSection(lines []rawLine) (FilePatch, error) {
	fp := FilePatch{Status: Modified}

	i := 0
	headerEnd := 0
	var fileName string

	for i < len(lines) {
		text := string(lines[i].bytes)

		switch {
		case strings.HasPrefix(text, "diff --git "):
			fileName = extractGitDiffPaths(text)
			i++
			headerEnd = i
			continue
		case strings.HasPrefix(text, "rename from "), strings.HasPrefix(text, "rename to "):
			return FilePatch{}, &ParseError{File: fileName, Msg: "renames are not supported"}
		case strings.HasPrefix(text, "copy from "), strings.HasPrefix(text, "copy to "):
			return FilePatch{}, &ParseError{File: fileName, Msg: "copies are not supported"}
		case strings.HasPrefix(text, "similarity index "):
			return FilePatch{}, &ParseError{File: fileName, Msg: "renames/copies are not supported"}
		case strings.HasPrefix(text, "old mode "), strings.HasPrefix(text, "new mode "):
			return FilePatch{}, &ParseError{File: fileName, Msg: "mode-only changes are not supported"}
		case strings.HasPrefix(text, "new file mode "):
			fp.Status = Added
			i++
			headerEnd = i
			continue
		case strings.HasPrefix(text, "deleted file mode "):
			fp.Status = Deleted
			i++
			headerEnd = i
			continue
		case strings.HasPrefix(text, "index "),
			strings.HasPrefix(text, "Binary files "):
			i++
			headerEnd = i
			continue
		case strings.HasPrefix(text, "--- "):
			fp.OldPath = pathFromHeaderLine(text[4:])
			i++
			headerEnd = i
			continue
		case strings.HasPrefix(text, "+++ "):
			fp.NewPath = pathFromHeaderLine(text[4:])
			i++
			headerEnd = i
			continue
		case strings.HasPrefix(text, "@@ "):
			goto hunks
		default:
			i++
			headerEnd = i
		}
	}

hunks:
	fp.HeaderRaw = joinRaw(lines[:headerEnd])

	fp.OldPath = stripAB(fp.OldPath)
	fp.NewPath = stripAB(fp.NewPath)
	if fp.OldPath == "" && fileName != "" {
		fp.OldPath = fileName
	}
	if fp.NewPath == "" && fileName != "" {
		fp.NewPath = fileName
	}
	if fp.Status == Added {
		fp.OldPath = "/dev/null"
	}
	if fp.Status == Deleted {
		fp.NewPath = "/dev/null"
	}

	for i < len(lines) {
		text := string(lines[i].bytes)
		matches := hunkHeaderRe.FindStringSubmatch(text)
		if matches == nil {
			return FilePatch{}, &ParseError{File: fileName, Msg: fmt.Sprintf("invalid hunk header: %s", text)}
		}

		hunk := Hunk{
			OldStart:         atoi(matches[1]),
			OldCount:         atoiDefault(matches[2], 1),
			NewStart:         atoi(matches[3]),
			NewCount:         atoiDefault(matches[4], 1),
			FuncContext:      matches[5],
			HeaderHasNewline: lines[i].hasNewline,
			OldPath:          fp.OldPath,
			NewPath:          fp.NewPath,
		}
		i++

		for i < len(lines) {
			lt := lines[i].bytes
			if bytes.HasPrefix(lt, []byte("@@ ")) || bytes.HasPrefix(lt, []byte("diff --git ")) {
				break
			}
			if len(lt) == 0 {
				// A body line must start with a sigil; an empty line
				// (no sigil at all) can only be the final, blank
				// artifact of a trailing newline and is not valid hunk
				// content.
				return FilePatch{}, &ParseError{File: fileName, Msg: "malformed hunk body: blank line"}
			}
			if lt[0] == '\\' {
				marker := &Marker{Raw: append([]byte(nil), lt...), HasNewline: lines[i].hasNewline}
				attachMarker(&hunk, marker)
				i++
				continue
			}

			var kind LineKind
			switch lt[0] {
			case ' ':
				kind = Context
			case '+':
				kind = Add
			case '-':
				kind = Del
			default:
				return FilePatch{}, &ParseError{File: fileName, Msg: fmt.Sprintf("malformed hunk body line: %q", string(lt))}
			}

			hunk.Lines = append(hunk.Lines, Line{
				Kind:       kind,
				Raw:        append([]byte(nil), lt...),
				HasNewline: lines[i].hasNewline,
			})
			i++
		}

		if err := validateCounts(&hunk, fileName); err != nil {
			return FilePatch{}, err
		}

		fp.Hunks = append(fp.Hunks, hunk)
	}

	return fp, nil
}

func attachMarker(h *Hunk, m *Marker) {
	// The marker binds to the immediately preceding line with a matching
	// sign: add -> last add, del -> last del, context -> last context.
	// Since it always directly follows that line in the source, it is
	// simply the most recent line of its own kind.
	if len(h.Lines) == 0 {
		return
	}
	h.Lines[len(h.Lines)-1].NoNewline = m
}

func validateCounts(h *Hunk, file string) error {
	var oldCnt, newCnt int
	for _, l := range h.Lines {
		switch l.Kind {
		case Context:
			oldCnt++
			newCnt++
		case Del:
			oldCnt++
		case Add:
			newCnt++
		}
	}
	if oldCnt != h.OldCount {
		return &ParseError{File: file, Msg: fmt.Sprintf("hunk header old count %d does not match %d actual lines", h.OldCount, oldCnt)}
	}
	if newCnt != h.NewCount {
		return &ParseError{File: file, Msg: fmt.Sprintf("hunk header new count %d does not match %d actual lines", h.NewCount, newCnt)}
	}
	return nil
}

func joinRaw(lines []rawLine) []byte {
	var out []byte
	for _, l := range lines {
		out = append(out, l.bytes...)
		if l.hasNewline {
			out = append(out, '\n')
		}
	}
	return out
}

// stripAB removes a leading "a/" or "b/" diff path prefix, leaving
// "/dev/null" untouched.
func stripAB(path string) string {
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}

// extractGitDiffPaths pulls a display filename out of a `diff --git a/X
// b/Y` line, preferring Y. Used only for error messages; the authoritative
// paths come from the ---/+++ lines.
func extractGitDiffPaths(line string) string {
	line = strings.TrimPrefix(line, "diff --git ")
	parts := strings.Fields(line)
	if len(parts) == 2 {
		return strings.TrimPrefix(parts[1], "b/")
	}
	if len(parts) == 1 {
		return strings.TrimPrefix(parts[0], "a/")
	}
	return line
}

// pathFromHeaderLine extracts the path from a `--- <path>` / `+++ <path>`
// line body, stripping a trailing tab-separated timestamp if present.
func pathFromHeaderLine(rest string) string {
	if idx := strings.IndexByte(rest, '\t'); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}
