// Package hunklist flattens a parsed diff into the single ordered hunk
// listing that hunk identity, selection resolution, `hunks`, and `show`
// all operate over, so no caller ever re-derives hunk order on its own.
package hunklist

import (
	"github.com/cwarden/git-surgeon/internal/diffparse"
	"github.com/cwarden/git-surgeon/internal/hunkid"
)

// Entry is one hunk in the flattened listing, with a back-reference to its
// owning file so callers can still group by file for display or
// synthesis.
type Entry struct {
	ID       hunkid.ID
	FileIdx  int
	HunkIdx  int
	File     diffparse.FilePatch
	Hunk     diffparse.Hunk
}

// Build flattens patches' hunks in file order and assigns each an ID.
func Build(patches []diffparse.FilePatch) []Entry {
	var flat []diffparse.Hunk
	var locations [][2]int
	for fi, fp := range patches {
		for hi := range fp.Hunks {
			flat = append(flat, fp.Hunks[hi])
			locations = append(locations, [2]int{fi, hi})
		}
	}

	ids := hunkid.Assign(flat)

	entries := make([]Entry, len(flat))
	for i, h := range flat {
		fi, hi := locations[i][0], locations[i][1]
		entries[i] = Entry{
			ID:      ids[i],
			FileIdx: fi,
			HunkIdx: hi,
			File:    patches[fi],
			Hunk:    h,
		}
	}
	return entries
}

// Hunks extracts the raw hunk slice from a listing, in listing order.
func Hunks(entries []Entry) []diffparse.Hunk {
	hunks := make([]diffparse.Hunk, len(entries))
	for i, e := range entries {
		hunks[i] = e.Hunk
	}
	return hunks
}

// ByID finds the entry with the given ID.
func ByID(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if string(e.ID) == id {
			return e, true
		}
	}
	return Entry{}, false
}

// FilterByPath keeps only entries belonging to the given file path (either
// old or new path, so it matches deletions too).
func FilterByPath(entries []Entry, path string) []Entry {
	if path == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if e.File.OldPath == path || e.File.NewPath == path {
			out = append(out, e)
		}
	}
	return out
}
