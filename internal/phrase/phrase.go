// Package phrase canonicalizes raw chat text into comparable segment keys
// and decides when two keys mean the same segment.
package phrase

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
)

// SimilarityThreshold is the minimum similarity ratio at which two distinct
// normalized phrases are merged into one segment.
const SimilarityThreshold = 0.86

// Normalize turns raw submission text into a normalized key: case-folded,
// internal whitespace collapsed to single spaces, trimmed, every character
// outside [a-z0-9 ] removed, trimmed again. An empty result means "no vote"
// and must be discarded by the caller.
func Normalize(raw string) string {
	folded := cases.Fold().String(raw)
	collapsed := strings.Join(strings.Fields(folded), " ")
	var b strings.Builder
	b.Grow(len(collapsed))
	for _, r := range collapsed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FoldSender canonicalizes a sender handle.
func FoldSender(handle string) string {
	return strings.TrimSpace(cases.Fold().String(handle))
}

// Similarity returns the character-wise matching ratio 2*M/T between a and b,
// where M is the total size of the matching blocks found by the greedy
// longest-matching-block algorithm and T the sum of both lengths.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Match returns the canonical phrase the candidate should merge into, or
// ok=false when the candidate stands on its own. Canonical phrases are
// visited in insertion order; for each, exact equality is checked first,
// then substring containment either way, then Similarity against
// SimilarityThreshold. ignore names one phrase to skip, used when re-keying
// an existing segment.
//
// First-match-over-insertion-order is an intentional policy: the same
// candidate can canonicalize differently depending on the order phrases
// were first seen.
func Match(candidate string, canonical []string, ignore string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	for _, existing := range canonical {
		if ignore != "" && existing == ignore {
			continue
		}
		if candidate == existing {
			return existing, true
		}
		if strings.Contains(existing, candidate) || strings.Contains(candidate, existing) {
			return existing, true
		}
		if Similarity(candidate, existing) >= SimilarityThreshold {
			return existing, true
		}
	}
	return "", false
}
