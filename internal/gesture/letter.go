package gesture

import "fmt"

// Letter is a recognized fingerspelling letter.
type Letter byte

// Letters of the fixed alphabet. Only some of them can be produced by the
// classifier; the rest exist for the description table.
const (
	LetterA Letter = 'A'
	LetterB Letter = 'B'
	LetterC Letter = 'C'
	LetterD Letter = 'D'
	LetterE Letter = 'E'
	LetterF Letter = 'F'
	LetterI Letter = 'I'
	LetterL Letter = 'L'
	LetterM Letter = 'M'
	LetterN Letter = 'N'
	LetterO Letter = 'O'
	LetterS Letter = 'S'
	LetterT Letter = 'T'
	LetterU Letter = 'U'
	LetterV Letter = 'V'
	LetterY Letter = 'Y'

	// Unknown is returned when no rule matches. It is never added to a word.
	Unknown Letter = '?'
)

// Alphabet lists every letter in display order.
var Alphabet = []Letter{
	LetterA, LetterB, LetterC, LetterD, LetterE, LetterF, LetterI, LetterL,
	LetterM, LetterN, LetterO, LetterS, LetterT, LetterU, LetterV, LetterY,
}

var descriptions = map[Letter]string{
	LetterA: "Thumb open, others closed",
	LetterB: "All fingers open",
	LetterC: "Fingers curved into a C",
	LetterD: "Index finger open",
	LetterE: "All fingers half closed",
	LetterF: "Thumb and index joined",
	LetterI: "Little finger open",
	LetterL: "Thumb and index form an L",
	LetterM: "Thumb tucked, three fingers closed",
	LetterN: "Index and middle half closed",
	LetterO: "Fingers form a circle",
	LetterS: "Fist",
	LetterT: "Index draws a T",
	LetterU: "Index and middle side by side",
	LetterV: "Index and middle form a V",
	LetterY: "Thumb and little finger open",
}

// String returns the letter as a one-character string.
func (l Letter) String() string {
	return string(rune(l))
}

// IsKnown reports whether l belongs to the alphabet.
func (l Letter) IsKnown() bool {
	_, ok := descriptions[l]
	return ok
}

// Description returns how the letter is formed, if it has a description.
func (l Letter) Description() (string, bool) {
	d, ok := descriptions[l]
	return d, ok
}

// MarshalText encodes the letter as its character.
func (l Letter) MarshalText() ([]byte, error) {
	return []byte{byte(l)}, nil
}

// UnmarshalText decodes a one-character letter.
func (l *Letter) UnmarshalText(text []byte) error {
	if len(text) != 1 {
		return fmt.Errorf("letter %q: want one character", text)
	}
	*l = Letter(text[0])
	return nil
}
