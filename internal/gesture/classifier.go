package gesture

import "github.com/ayusman/fingerspell/internal/detector"

// Rule maps finger states matching Match to Letter.
type Rule struct {
	Letter Letter
	Match  func(FingerState) bool
}

// rules is evaluated top to bottom and the first match wins. The order is
// significant: B does not constrain the thumb, so thumb plus four fingers is
// B and never reaches A or L.
var rules = []Rule{
	{LetterA, func(fs FingerState) bool { return fs.only(Thumb) }},
	{LetterB, func(fs FingerState) bool { return fs[Index] && fs[Middle] && fs[Ring] && fs[Pinky] }},
	{LetterS, func(fs FingerState) bool { return fs.only() }},
	{LetterL, func(fs FingerState) bool { return fs.only(Thumb, Index) }},
	{LetterV, func(fs FingerState) bool { return fs.only(Index, Middle) }},
	{LetterI, func(fs FingerState) bool { return fs.only(Pinky) }},
	{LetterY, func(fs FingerState) bool { return fs.only(Thumb, Pinky) }},
	{LetterD, func(fs FingerState) bool { return fs.only(Index) }},
}

// Classify returns the letter for a finger state, or Unknown.
func Classify(fs FingerState) Letter {
	for _, r := range rules {
		if r.Match(fs) {
			return r.Letter
		}
	}
	return Unknown
}

// Recognize extracts the finger state of a hand and classifies it.
func Recognize(set *detector.LandmarkSet) (FingerState, Letter) {
	fs := Extract(set)
	return fs, Classify(fs)
}
