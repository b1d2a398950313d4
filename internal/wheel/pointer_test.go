package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwheel/internal/ledger"
)

func noVoters(string) []string { return nil }

// rotationFor returns a rotation that places the given wheel angle under
// the pointer.
func rotationFor(wheelAngle float64) float64 {
	r := PointerAngle - wheelAngle
	for r < 0 {
		r += 360
	}
	return r
}

func TestResolve_ZeroWeight(t *testing.T) {
	_, ok := Resolve(nil, noVoters, 0)
	assert.False(t, ok)
	_, ok = Resolve([]ledger.Segment{{Phrase: "x", Count: 0}}, noVoters, 123)
	assert.False(t, ok)
}

func TestResolve_PartitionBoundaries(t *testing.T) {
	// x occupies [0,270), y occupies [270,360).
	view := []ledger.Segment{{Phrase: "x", Count: 3}, {Phrase: "y", Count: 1}}

	pick, ok := Resolve(view, noVoters, rotationFor(0))
	require.True(t, ok)
	assert.Equal(t, "x", pick.Phrase)

	pick, ok = Resolve(view, noVoters, rotationFor(300))
	require.True(t, ok)
	assert.Equal(t, "y", pick.Phrase)

	pick, ok = Resolve(view, noVoters, rotationFor(269.9))
	require.True(t, ok)
	assert.Equal(t, "x", pick.Phrase)

	pick, ok = Resolve(view, noVoters, rotationFor(270))
	require.True(t, ok)
	assert.Equal(t, "y", pick.Phrase)
}

func TestResolve_VoterSlots(t *testing.T) {
	// One segment, two voters: amy gets [0,180), zed gets [180,360).
	view := []ledger.Segment{{Phrase: "cats", Count: 2}}
	voters := func(p string) []string {
		require.Equal(t, "cats", p)
		return []string{"amy", "zed"}
	}

	pick, ok := Resolve(view, voters, rotationFor(10))
	require.True(t, ok)
	assert.Equal(t, Pick{Phrase: "cats", Voter: "amy"}, pick)

	pick, ok = Resolve(view, voters, rotationFor(200))
	require.True(t, ok)
	assert.Equal(t, Pick{Phrase: "cats", Voter: "zed"}, pick)
}

func TestResolve_PadsMissingVotersWithPlaceholders(t *testing.T) {
	// Tally 4 but only one attributed sender: slots are
	// [amy, unknown-1, unknown-2, unknown-3], 90 degrees each.
	view := []ledger.Segment{{Phrase: "cats", Count: 4}}
	voters := func(string) []string { return []string{"amy"} }

	pick, _ := Resolve(view, voters, rotationFor(45))
	assert.Equal(t, "amy", pick.Voter)

	pick, _ = Resolve(view, voters, rotationFor(100))
	assert.Equal(t, "unknown-1", pick.Voter)

	pick, _ = Resolve(view, voters, rotationFor(350))
	assert.Equal(t, "unknown-3", pick.Voter)
}

func TestResolve_TruncatesVotersToTally(t *testing.T) {
	view := []ledger.Segment{{Phrase: "cats", Count: 1}}
	voters := func(string) []string { return []string{"amy", "bob", "zed"} }

	pick, _ := Resolve(view, voters, rotationFor(359))
	assert.Equal(t, "amy", pick.Voter)
}

func TestResolve_ConsistentWithSelectorOrdering(t *testing.T) {
	l := ledger.New()
	l.ApplyVote("a", "xx")
	l.ApplyVote("b", "xx")
	l.ApplyVote("c", "xx")
	l.ApplyVote("d", "yy")
	view := l.TopK(10)
	require.Equal(t, []ledger.Segment{{Phrase: "xx", Count: 3}, {Phrase: "yy", Count: 1}}, view)

	pick, ok := Resolve(view, l.VotersOf, rotationFor(0))
	require.True(t, ok)
	assert.Equal(t, "xx", pick.Phrase)
	assert.Equal(t, "a", pick.Voter)

	pick, ok = Resolve(view, l.VotersOf, rotationFor(300))
	require.True(t, ok)
	assert.Equal(t, Pick{Phrase: "yy", Voter: "d"}, pick)
}
