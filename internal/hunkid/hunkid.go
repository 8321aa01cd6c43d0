// Package hunkid computes the stable, content-derived identifiers that are
// git-surgeon's external handle for a hunk.
package hunkid

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/cwarden/git-surgeon/internal/diffparse"
)

const prefixLen = 7

// fieldSeparator delimits the path from the line payload in the
// fingerprint input. It is a byte that cannot appear in a git path or in a
// hunk line's leading sigil, so it cannot be forged by adversarial content.
const fieldSeparator = 0

// Fingerprint computes the raw (uncollided) content hash of a single hunk:
// SHA-1 over the hunk's effective path, a separator byte, and the hunk's
// line payload bytes (sigils included, header and function-context
// excluded). The effective path is the new path, except for a deleted
// file (NewPath == "/dev/null"), which hashes under its old path instead,
// symmetric with FilePatch.Path().
func Fingerprint(h diffparse.Hunk) [sha1.Size]byte {
	path := h.NewPath
	if path == "/dev/null" {
		path = h.OldPath
	}

	sum := sha1.New()
	sum.Write([]byte(path))
	sum.Write([]byte{fieldSeparator})
	sum.Write(h.FingerprintPayload())
	var out [sha1.Size]byte
	copy(out[:], sum.Sum(nil))
	return out
}

// ID is a resolved, possibly-suffixed hunk identifier.
type ID string

// Assign computes IDs for hunks in listing order, disambiguating
// fingerprint collisions with a 1-based `-N` suffix starting at 2. The
// first occurrence of a fingerprint is always bare.
func Assign(hunks []diffparse.Hunk) []ID {
	seen := make(map[[sha1.Size]byte]int, len(hunks))
	ids := make([]ID, len(hunks))

	for i, h := range hunks {
		fp := Fingerprint(h)
		bare := hex.EncodeToString(fp[:])[:prefixLen]
		count := seen[fp]
		seen[fp] = count + 1

		if count == 0 {
			ids[i] = ID(bare)
		} else {
			ids[i] = ID(fmt.Sprintf("%s-%d", bare, count+1))
		}
	}
	return ids
}

// Lookup resolves a user-supplied ID string against a freshly computed
// listing, returning the index into hunks it refers to.
func Lookup(hunks []diffparse.Hunk, want string) (int, bool) {
	ids := Assign(hunks)
	for i, id := range ids {
		if string(id) == want {
			return i, true
		}
	}
	return -1, false
}
