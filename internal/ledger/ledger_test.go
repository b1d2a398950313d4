package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyVote_Idempotent(t *testing.T) {
	l := New()
	require.True(t, l.ApplyVote("alice", "pizza"))
	assert.False(t, l.ApplyVote("alice", "pizza"))
	assert.Equal(t, 1, l.Count("pizza"))
	assert.Equal(t, 1, l.Senders())
}

func TestApplyVote_FuzzyMerge(t *testing.T) {
	l := New()
	require.True(t, l.ApplyVote("alice", "pizza"))
	require.True(t, l.ApplyVote("bob", "piza "))
	assert.Equal(t, 2, l.Count("pizza"))
	assert.Equal(t, []string{"pizza"}, l.Phrases())

	voted, ok := l.Vote("bob")
	require.True(t, ok)
	assert.Equal(t, "pizza", voted)
}

func TestApplyVote_Reassignment(t *testing.T) {
	l := New()
	require.True(t, l.ApplyVote("a", "cats"))
	assert.Equal(t, 1, l.Count("cats"))

	require.True(t, l.ApplyVote("a", "dogs"))
	assert.Zero(t, l.Count("cats"))
	assert.NotContains(t, l.Phrases(), "cats")
	assert.Equal(t, 1, l.Count("dogs"))

	assert.False(t, l.ApplyVote("a", "dogs"))
	assert.Equal(t, 1, l.Count("dogs"))
}

func TestApplyVote_Conservation(t *testing.T) {
	l := New()
	votes := []struct{ sender, text string }{
		{"a", "cats"}, {"b", "dogs"}, {"c", "cats"},
		{"a", "dogs"}, {"b", "birds"}, {"d", "cats!"},
		{"c", "dogs"}, {"a", "dogs"},
	}
	for _, v := range votes {
		l.ApplyVote(v.sender, v.text)
	}
	assert.Equal(t, l.Senders(), l.Total())
}

func TestApplyVote_DiscardsEmpty(t *testing.T) {
	l := New()
	assert.False(t, l.ApplyVote("a", "  !!! "))
	assert.False(t, l.ApplyVote("  ", "cats"))
	assert.Zero(t, l.Total())
}

func TestApplyVote_SenderFolded(t *testing.T) {
	l := New()
	l.ApplyVote("Alice", "cats")
	assert.False(t, l.ApplyVote(" alice ", "cats"))
	assert.Equal(t, 1, l.Senders())
}

func TestSelectTopK(t *testing.T) {
	counts := map[string]int{"a": 3, "b": 3, "c": 1}
	got := SelectTopK(counts, 2)
	assert.Equal(t, []Segment{{"a", 3}, {"b", 3}}, got)

	// Deterministic for equal inputs.
	for i := 0; i < 10; i++ {
		assert.Equal(t, got, SelectTopK(counts, 2))
	}

	// K is clamped to a minimum of 1.
	assert.Equal(t, []Segment{{"a", 3}}, SelectTopK(counts, 0))
	assert.Empty(t, SelectTopK(nil, 5))
}

func TestSetCount(t *testing.T) {
	l := New()
	l.ApplyVote("a", "cats")
	l.SetCount("cats", 5)
	assert.Equal(t, 5, l.Count("cats"))

	// Tally may exceed the number of attributed senders.
	assert.Equal(t, 1, l.Senders())

	// Setting to zero removes the segment and its mappings.
	l.SetCount("cats", 0)
	assert.Empty(t, l.Phrases())
	assert.Zero(t, l.Senders())

	// Negative input clamps to the zero/remove behavior.
	l.SetCount("dogs", 3)
	l.SetCount("dogs", -2)
	assert.Zero(t, l.Count("dogs"))
}

func TestAddVotes(t *testing.T) {
	l := New()

	// New phrase: tally set to delta.
	target, ok := l.AddVotes("tacos", 3)
	require.True(t, ok)
	assert.Equal(t, "tacos", target)
	assert.Equal(t, 3, l.Count("tacos"))

	// Fuzzy match onto an existing phrase adds the delta.
	target, ok = l.AddVotes("taco", 2)
	require.True(t, ok)
	assert.Equal(t, "tacos", target)
	assert.Equal(t, 5, l.Count("tacos"))

	// Exact phrase sets the tally rather than adding.
	target, ok = l.AddVotes("tacos", 1)
	require.True(t, ok)
	assert.Equal(t, "tacos", target)
	assert.Equal(t, 1, l.Count("tacos"))

	// Driving the tally to zero removes the segment.
	l.AddVotes("taco", -1)
	assert.Empty(t, l.Phrases())

	_, ok = l.AddVotes("   ", 1)
	assert.False(t, ok)
}

func TestRenamePhrase_Rekey(t *testing.T) {
	l := New()
	l.ApplyVote("a", "cats")
	l.ApplyVote("b", "cats")

	target, ok := l.RenamePhrase("cats", "Kittens!")
	require.True(t, ok)
	assert.Equal(t, "kittens", target)
	assert.Zero(t, l.Count("cats"))
	assert.Equal(t, 2, l.Count("kittens"))

	// Sender mappings follow the tally.
	voted, ok := l.Vote("a")
	require.True(t, ok)
	assert.Equal(t, "kittens", voted)
}

func TestRenamePhrase_MergeOnRename(t *testing.T) {
	l := New()
	l.ApplyVote("a", "cats")
	l.ApplyVote("b", "dogs")
	l.ApplyVote("c", "dogs")

	target, ok := l.RenamePhrase("cats", "dogs")
	require.True(t, ok)
	assert.Equal(t, "dogs", target)
	assert.Equal(t, 3, l.Count("dogs"))
	assert.Equal(t, []string{"dogs"}, l.Phrases())

	voted, _ := l.Vote("a")
	assert.Equal(t, "dogs", voted)
}

func TestRenamePhrase_Invalid(t *testing.T) {
	l := New()
	l.ApplyVote("a", "cats")
	_, ok := l.RenamePhrase("cats", "  ! ")
	assert.False(t, ok)
	_, ok = l.RenamePhrase("birds", "fish")
	assert.False(t, ok)
	assert.Equal(t, 1, l.Count("cats"))
}

func TestRemoveSegment(t *testing.T) {
	l := New()
	l.ApplyVote("a", "cats")
	l.ApplyVote("b", "cats")
	l.ApplyVote("c", "dogs")

	l.RemoveSegment("cats")
	assert.Zero(t, l.Count("cats"))
	assert.Equal(t, 1, l.Senders())
	_, ok := l.Vote("a")
	assert.False(t, ok)

	// No orphaned mappings remain.
	l.mustVerify()
}

func TestRemoveSender(t *testing.T) {
	l := New()
	l.ApplyVote("a", "cats")
	l.ApplyVote("b", "cats")

	l.RemoveSender("a")
	assert.Equal(t, 1, l.Count("cats"))
	assert.Equal(t, 1, l.Senders())

	l.RemoveSender("b")
	assert.Empty(t, l.Phrases())

	l.RemoveSender("nobody")
	l.mustVerify()
}

func TestClear(t *testing.T) {
	l := New()
	l.ApplyVote("a", "cats")
	l.SetCount("dogs", 4)
	l.Clear()
	assert.Empty(t, l.Phrases())
	assert.Zero(t, l.Senders())
	assert.Zero(t, l.Total())
}

func TestVotersOf(t *testing.T) {
	l := New()
	l.ApplyVote("zed", "cats")
	l.ApplyVote("amy", "cats")
	l.ApplyVote("bob", "dogs")
	assert.Equal(t, []string{"amy", "zed"}, l.VotersOf("cats"))
	assert.Empty(t, l.VotersOf("birds"))
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 7, ParseCount("7", 1))
	assert.Equal(t, -2, ParseCount("-2", 1))
	assert.Equal(t, 1, ParseCount("seven", 1))
	assert.Equal(t, 10, ParseCount("", 10))
}

func TestMustVerify_PanicsOnOrphan(t *testing.T) {
	l := New()
	l.ApplyVote("a", "cats")
	l.votes["ghost"] = "absent"
	assert.Panics(t, func() { l.mustVerify() })
}
