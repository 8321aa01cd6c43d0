// Package selection resolves command-line hunk references — "<id>",
// "<id>:<range>[,<range>…]", repeated-ID spellings, and the `--lines`
// flag — against a freshly computed hunk listing.
package selection

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cwarden/git-surgeon/internal/diffparse"
	"github.com/cwarden/git-surgeon/internal/hunklist"
	"github.com/cwarden/git-surgeon/internal/hunkid"
)

// LineRange is a 1-based closed interval over a hunk's display numbering.
type LineRange struct {
	Start, End int
}

// Resolved is one (Hunk, optional line restriction) pair of a Selection.
// A nil Ranges means the whole hunk is selected.
type Resolved struct {
	Entry  hunklist.Entry
	ID     hunkid.ID
	Hunk   diffparse.Hunk
	Ranges []LineRange
}

// Includes reports whether display line n (1-based) is selected. A whole-
// hunk Resolved includes every line.
func (r Resolved) Includes(n int) bool {
	if r.Ranges == nil {
		return true
	}
	for _, rg := range r.Ranges {
		if n >= rg.Start && n <= rg.End {
			return true
		}
	}
	return false
}

// ParseRanges parses a comma-separated list of 1-based closed intervals,
// e.g. "3-5,9-9". A bare number "9" is accepted as shorthand for "9-9".
func ParseRanges(s string) ([]LineRange, error) {
	var ranges []LineRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var start, end int
		if idx := strings.IndexByte(part, '-'); idx >= 0 {
			var err error
			start, err = strconv.Atoi(part[:idx])
			if err != nil {
				return nil, fmt.Errorf("invalid range %q", part)
			}
			end, err = strconv.Atoi(part[idx+1:])
			if err != nil {
				return nil, fmt.Errorf("invalid range %q", part)
			}
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid range %q", part)
			}
			start, end = n, n
		}
		if start > end {
			return nil, fmt.Errorf("inverted range %q", part)
		}
		ranges = append(ranges, LineRange{Start: start, End: end})
	}
	return ranges, nil
}

// ParseRef splits a positional hunk reference "<id>" or
// "<id>:<range>[,<range>…]" into its id and ranges.
func ParseRef(ref string) (id string, ranges []LineRange, err error) {
	idx := strings.IndexByte(ref, ':')
	if idx < 0 {
		return ref, nil, nil
	}
	id = ref[:idx]
	ranges, err = ParseRanges(ref[idx+1:])
	return id, ranges, err
}

// Resolve resolves a list of positional hunk references (plus an optional
// --lines flag applying to a single bare-ID ref) against hunks. Both
// "<id>:r1,r2" and repeated "<id>:r1 <id>:r2" are accepted and merged
// into one Resolved per id, ordered by first appearance of the id, ranges
// ordered by first appearance within that merge.
func Resolve(entries []hunklist.Entry, refs []string, linesFlag string) ([]Resolved, error) {
	byID := make(map[string]hunklist.Entry, len(entries))
	for _, e := range entries {
		byID[string(e.ID)] = e
	}

	if linesFlag != "" {
		if len(refs) != 1 {
			return nil, fmt.Errorf("--lines requires exactly one hunk reference")
		}
		if strings.Contains(refs[0], ":") {
			return nil, fmt.Errorf("--lines cannot be combined with an inline range on %s", refs[0])
		}
		ranges, err := ParseRanges(linesFlag)
		if err != nil {
			return nil, err
		}
		return resolveParsed(byID, []parsedRef{{id: refs[0], ranges: ranges}})
	}

	var parsed []parsedRef
	for _, ref := range refs {
		id, ranges, err := ParseRef(ref)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, parsedRef{id: id, ranges: ranges})
	}
	return resolveParsed(byID, parsed)
}

type parsedRef struct {
	id     string
	ranges []LineRange
}

func resolveParsed(byID map[string]hunklist.Entry, parsed []parsedRef) ([]Resolved, error) {
	var order []string
	merged := make(map[string]*Resolved)
	wholeHunk := make(map[string]bool)

	for _, p := range parsed {
		entry, ok := byID[p.id]
		if !ok {
			return nil, fmt.Errorf("hunk not found: %s", p.id)
		}

		r, exists := merged[p.id]
		if !exists {
			order = append(order, p.id)
			r = &Resolved{Entry: entry, ID: entry.ID, Hunk: entry.Hunk}
			merged[p.id] = r
		}

		if len(p.ranges) == 0 {
			wholeHunk[p.id] = true
			continue
		}
		r.Ranges = append(r.Ranges, p.ranges...)
	}

	var out []Resolved
	for _, id := range order {
		r := merged[id]
		if wholeHunk[id] {
			r.Ranges = nil
		} else if err := validateRanges(r); err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func validateRanges(r *Resolved) error {
	display := len(r.Hunk.Lines)
	sorted := append([]LineRange(nil), r.Ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	prevEnd := 0
	for i, rg := range sorted {
		if rg.Start < 1 || rg.End > display {
			bad := rg.Start
			if rg.Start >= 1 && rg.Start <= display {
				bad = rg.End
			}
			return fmt.Errorf("hunk %s: line %d is out of range 1..%d", r.ID, bad, display)
		}
		if i > 0 && rg.Start <= prevEnd {
			return fmt.Errorf("hunk %s: overlapping line ranges", r.ID)
		}
		prevEnd = rg.End
	}
	return nil
}
