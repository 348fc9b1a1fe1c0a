package app

import (
	"time"

	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/display"
	"github.com/ayusman/fingerspell/internal/gesture"
)

// Snapshot is the recognizer output for one frame. Published snapshots are
// never modified.
type Snapshot struct {
	Frame       uint64                `json:"frame"`
	At          time.Time             `json:"at"`
	HandPresent bool                  `json:"hand_present"`
	Landmarks   *detector.LandmarkSet `json:"landmarks,omitempty"`
	Fingers     gesture.FingerState   `json:"fingers"`
	Letter      gesture.Letter        `json:"letter,omitempty"`
	Description string                `json:"description,omitempty"`
	Word        string                `json:"word"`
	Holding     gesture.Letter        `json:"holding,omitempty"`
	Progress    float64               `json:"progress"`
	LastSaved   string                `json:"last_saved,omitempty"`
}

// Overlay returns what the display draws for this snapshot.
func (s Snapshot) Overlay() display.Overlay {
	return display.Overlay{
		Hand:     s.Landmarks,
		Letter:   s.Letter,
		Fingers:  s.Fingers,
		Word:     s.Word,
		Progress: s.Progress,
	}
}
