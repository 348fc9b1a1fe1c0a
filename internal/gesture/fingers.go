// Package gesture turns hand landmarks into finger states and static letters.
package gesture

import (
	"fmt"
	"strings"

	"github.com/ayusman/fingerspell/internal/detector"
)

// Finger identifies one finger in a FingerState.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

// String returns the lower-case finger name.
func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return "unknown"
	}
	return fingerNames[f]
}

// tipAndReference pairs each finger's tip with the joint it is compared against.
var tipAndReference = [NumFingers][2]int{
	Thumb:  {detector.ThumbTip, detector.ThumbIP},
	Index:  {detector.IndexTip, detector.IndexPIP},
	Middle: {detector.MiddleTip, detector.MiddlePIP},
	Ring:   {detector.RingTip, detector.RingPIP},
	Pinky:  {detector.PinkyTip, detector.PinkyPIP},
}

// FingerState records which fingers are extended, ordered thumb to pinky.
type FingerState [NumFingers]bool

// NewFingerState builds a FingerState from individual flags.
func NewFingerState(thumb, index, middle, ring, pinky bool) FingerState {
	return FingerState{thumb, index, middle, ring, pinky}
}

// Extract computes the finger state of a hand in screen space.
//
// The thumb is extended when its tip lies right of the IP joint. The other
// fingers are extended when the tip lies above the PIP joint. No handedness
// or rotation correction is applied, so the result depends on how the hand
// is held relative to the camera.
func Extract(set *detector.LandmarkSet) FingerState {
	var fs FingerState
	if set == nil {
		return fs
	}

	thumb := tipAndReference[Thumb]
	fs[Thumb] = set[thumb[0]].X > set[thumb[1]].X

	for f := Index; f < NumFingers; f++ {
		pair := tipAndReference[f]
		fs[f] = set[pair[0]].Y < set[pair[1]].Y
	}

	return fs
}

// Extended reports whether finger f is extended.
func (fs FingerState) Extended(f Finger) bool {
	if f < 0 || f >= NumFingers {
		return false
	}
	return fs[f]
}

// Count returns the number of extended fingers.
func (fs FingerState) Count() int {
	n := 0
	for _, ext := range fs {
		if ext {
			n++
		}
	}
	return n
}

// only reports whether exactly the given fingers are extended.
func (fs FingerState) only(fingers ...Finger) bool {
	var want FingerState
	for _, f := range fingers {
		want[f] = true
	}
	return fs == want
}

// String renders the state as five bits, e.g. "10000" for thumb only.
func (fs FingerState) String() string {
	var b strings.Builder
	b.Grow(int(NumFingers))
	for _, ext := range fs {
		if ext {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// MarshalText encodes the state in its bit-string form.
func (fs FingerState) MarshalText() ([]byte, error) {
	return []byte(fs.String()), nil
}

// UnmarshalText parses the bit-string form written by MarshalText.
func (fs *FingerState) UnmarshalText(text []byte) error {
	if len(text) != int(NumFingers) {
		return fmt.Errorf("finger state %q: want %d bits", text, NumFingers)
	}
	var out FingerState
	for i, c := range text {
		switch c {
		case '1':
			out[i] = true
		case '0':
		default:
			return fmt.Errorf("finger state %q: invalid bit %q", text, c)
		}
	}
	*fs = out
	return nil
}
