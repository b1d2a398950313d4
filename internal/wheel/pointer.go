package wheel

import (
	"fmt"
	"math"

	"chatwheel/internal/ledger"
)

// PointerAngle is the fixed reference angle the wheel is measured against.
const PointerAngle = 90.0

// Angle converts a rotation into the wheel angle under the pointer,
// normalized to [0,360).
func Angle(rotation float64) float64 {
	return math.Mod(math.Mod(PointerAngle-rotation, 360)+360, 360)
}

// Pick is the segment and contributing sender currently under the pointer.
// Voter is empty when no sender label could be attributed.
type Pick struct {
	Phrase string
	Voter  string
}

// Resolve determines which segment and which voter the pointer points at
// for the given rotation. The view's entries partition [0,360)
// proportionally to their counts in view order; within the matched entry,
// the senders currently mapped to the phrase (sorted alphabetically,
// truncated to the tally and padded with synthetic "unknown-N" labels up to
// it) sub-partition the entry's interval into equal slices.
//
// voters returns the alphabetically sorted senders mapped to a phrase.
// Returns ok=false only when the view's total weight is zero. A
// floating-point fallthrough past the last interval resolves to the first
// entry with no voter label.
func Resolve(view []ledger.Segment, voters func(string) []string, rotation float64) (Pick, bool) {
	total := ledger.TotalWeight(view)
	if total <= 0 {
		return Pick{}, false
	}

	wheelAngle := Angle(rotation)

	running := 0.0
	for _, seg := range view {
		extent := 360.0 * float64(seg.Count) / float64(total)
		if running <= wheelAngle && wheelAngle < running+extent {
			slots := voters(seg.Phrase)
			if len(slots) > seg.Count {
				slots = slots[:seg.Count]
			}
			for i := 0; len(slots) < seg.Count; i++ {
				slots = append(slots, fmt.Sprintf("unknown-%d", i+1))
			}
			if len(slots) == 0 {
				return Pick{Phrase: seg.Phrase}, true
			}
			local := wheelAngle - running
			slotExtent := extent / float64(len(slots))
			idx := min(len(slots)-1, int(local/slotExtent))
			return Pick{Phrase: seg.Phrase, Voter: slots[idx]}, true
		}
		running += extent
	}
	return Pick{Phrase: view[0].Phrase}, true
}
