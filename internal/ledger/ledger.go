// Package ledger holds the vote state: sender→phrase assignments and
// phrase→count tallies, plus the top-K view derived from them.
//
// A Ledger is owned and mutated by the single consumer loop only and does
// no internal locking.
package ledger

import (
	"fmt"
	"sort"
	"strconv"

	"chatwheel/internal/phrase"
)

// Segment is a canonical phrase with its current tally: one wedge of the
// wheel.
type Segment struct {
	Phrase string
	Count  int
}

// Ledger tracks, per sender, their single current vote, and per canonical
// phrase, its tally. A phrase's tally is at least the number of senders
// mapped to it, and may exceed it when counts were seeded by import or
// manual edits; that divergence is legitimate state, not corruption.
type Ledger struct {
	counts map[string]int
	order  []string          // canonical phrases, insertion order
	votes  map[string]string // sender -> canonical phrase
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		counts: make(map[string]int),
		votes:  make(map[string]string),
	}
}

// Phrases returns the canonical phrases in insertion order.
func (l *Ledger) Phrases() []string {
	return append([]string(nil), l.order...)
}

// Count returns the tally for a canonical phrase (0 if absent).
func (l *Ledger) Count(p string) int { return l.counts[p] }

// Counts returns a copy of the tally map.
func (l *Ledger) Counts() map[string]int {
	out := make(map[string]int, len(l.counts))
	for p, n := range l.counts {
		out[p] = n
	}
	return out
}

// Vote returns the sender's current canonical phrase, if any.
func (l *Ledger) Vote(sender string) (string, bool) {
	p, ok := l.votes[phrase.FoldSender(sender)]
	return p, ok
}

// Senders returns the number of senders with an active vote.
func (l *Ledger) Senders() int { return len(l.votes) }

// Total returns the sum of all tallies.
func (l *Ledger) Total() int {
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// VotersOf returns the senders currently mapped to the phrase, sorted
// alphabetically.
func (l *Ledger) VotersOf(p string) []string {
	var out []string
	for sender, voted := range l.votes {
		if voted == p {
			out = append(out, sender)
		}
	}
	sort.Strings(out)
	return out
}

// resolve maps a normalized candidate onto an existing canonical phrase, or
// registers it as a new one.
func (l *Ledger) resolve(candidate, ignore string) string {
	if target, ok := phrase.Match(candidate, l.order, ignore); ok {
		return target
	}
	return candidate
}

func (l *Ledger) addPhrase(p string, n int) {
	if _, ok := l.counts[p]; !ok {
		l.order = append(l.order, p)
	}
	l.counts[p] += n
}

func (l *Ledger) dropPhrase(p string) {
	delete(l.counts, p)
	for i, q := range l.order {
		if q == p {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// ApplyVote records a sender's vote from raw chat text and reports whether
// the ledger changed. The text is normalized and fuzzily resolved onto an
// existing segment; re-stating the current vote is a no-op; switching votes
// decrements the previous phrase and removes it when its tally reaches 0.
func (l *Ledger) ApplyVote(sender, rawText string) bool {
	sender = phrase.FoldSender(sender)
	if sender == "" {
		return false
	}
	p := phrase.Normalize(rawText)
	if p == "" {
		return false
	}

	target := l.resolve(p, "")
	previous := l.votes[sender]
	if previous == target {
		return false
	}
	if previous != "" {
		if _, ok := l.counts[previous]; ok {
			l.counts[previous]--
			if l.counts[previous] <= 0 {
				l.dropPhrase(previous)
			}
		}
	}
	l.addPhrase(target, 1)
	l.votes[sender] = target
	return true
}

// SetCount sets a phrase's tally directly, clamped at a floor of 0. A
// result of 0 removes the phrase and any sender mappings to it; other
// sender mappings are never touched, which is how tallies and
// sender-attributed votes legitimately diverge.
func (l *Ledger) SetCount(p string, n int) {
	if p == "" {
		return
	}
	if n <= 0 {
		l.RemoveSegment(p)
		return
	}
	l.addPhrase(p, n-l.counts[p])
}

// AddVotes is the add/update table operation. The text is normalized and
// fuzzily resolved; a fuzzy match onto a different phrase adds delta to the
// match's tally, otherwise the phrase's tally is set to delta. Either way
// the result is clamped at 0 and a zero tally removes the segment. Returns
// the affected canonical phrase.
func (l *Ledger) AddVotes(rawText string, delta int) (string, bool) {
	p := phrase.Normalize(rawText)
	if p == "" {
		return "", false
	}
	target := l.resolve(p, "")
	if target != p {
		l.addPhrase(target, delta)
	} else {
		l.addPhrase(p, delta-l.counts[p])
	}
	if l.counts[target] <= 0 {
		l.RemoveSegment(target)
	}
	return target, true
}

// RenamePhrase re-keys a segment. The new text is normalized and re-resolved
// through the matcher excluding the old key: a match folds the old tally
// into the match, otherwise the segment keeps its tally under the new key.
// Sender mappings follow the tally to its destination.
func (l *Ledger) RenamePhrase(old, newRaw string) (string, bool) {
	next := phrase.Normalize(newRaw)
	if next == "" || old == next {
		return "", false
	}
	n, ok := l.counts[old]
	if !ok {
		return "", false
	}
	l.dropPhrase(old)
	target := l.resolve(next, old)
	l.addPhrase(target, n)
	for sender, voted := range l.votes {
		if voted == old {
			l.votes[sender] = target
		}
	}
	return target, true
}

// RemoveSegment deletes a segment and every sender mapping to it.
func (l *Ledger) RemoveSegment(p string) {
	if _, ok := l.counts[p]; !ok {
		return
	}
	l.dropPhrase(p)
	for sender, voted := range l.votes {
		if voted == p {
			delete(l.votes, sender)
		}
	}
}

// RemoveSender withdraws a sender's vote, decrementing their phrase and
// removing it when unsupported.
func (l *Ledger) RemoveSender(sender string) {
	sender = phrase.FoldSender(sender)
	p, ok := l.votes[sender]
	if !ok {
		return
	}
	delete(l.votes, sender)
	if _, ok := l.counts[p]; ok {
		l.counts[p]--
		if l.counts[p] <= 0 {
			l.dropPhrase(p)
		}
	}
}

// Clear wipes all tallies and sender mappings.
func (l *Ledger) Clear() {
	l.counts = make(map[string]int)
	l.order = nil
	l.votes = make(map[string]string)
}

// TopK returns the top-K view of the ledger.
func (l *Ledger) TopK(k int) []Segment {
	return SelectTopK(l.counts, k)
}

// SelectTopK derives the top-K view from a tally map: entries sorted by
// count descending then phrase ascending, truncated to k (k is clamped to a
// minimum of 1). Deterministic for equal inputs; the returned slice is
// freshly allocated, never mutated in place.
func SelectTopK(counts map[string]int, k int) []Segment {
	if k < 1 {
		k = 1
	}
	view := make([]Segment, 0, len(counts))
	for p, n := range counts {
		view = append(view, Segment{Phrase: p, Count: n})
	}
	sort.SliceStable(view, func(i, j int) bool {
		if view[i].Count != view[j].Count {
			return view[i].Count > view[j].Count
		}
		return view[i].Phrase < view[j].Phrase
	})
	if len(view) > k {
		view = view[:k]
	}
	return view
}

// TotalWeight sums the counts of a view.
func TotalWeight(view []Segment) int {
	total := 0
	for _, s := range view {
		total += s.Count
	}
	return total
}

// ParseCount parses a user-supplied count, falling back to def on anything
// non-numeric.
func ParseCount(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// mustVerify panics on internal-consistency violations: a negative tally or
// a sender mapped to an absent or unsupported phrase. These cannot occur if
// the operation contracts are respected; a panic here is a programming
// error, not a recoverable condition.
func (l *Ledger) mustVerify() {
	for p, n := range l.counts {
		if n < 0 {
			panic(fmt.Sprintf("ledger: negative tally %d for %q", n, p))
		}
	}
	for sender, p := range l.votes {
		if l.counts[p] < 1 {
			panic(fmt.Sprintf("ledger: sender %q mapped to unsupported phrase %q", sender, p))
		}
	}
}
