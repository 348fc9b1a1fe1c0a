// Package word accumulates stable letters into a word and saves finished words.
package word

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/fingerspell/internal/gesture"
)

// DefaultDwell is how long a letter must stay unchanged before it is committed.
const DefaultDwell = 2 * time.Second

// ErrNoSink is returned by Save when the accumulator has nowhere to write.
var ErrNoSink = errors.New("word sink not configured")

// Clock supplies the current time. Tests inject a fake to control dwell.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, whose monotonic reading keeps durations
// correct across wall-clock adjustments.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sink persists a finished word and returns where it was written.
type Sink interface {
	Append(word string) (string, error)
}

// Saved describes a successful save.
type Saved struct {
	Word string
	Path string
	At   time.Time
}

// Config holds the accumulator settings.
type Config struct {
	Dwell time.Duration
	Clock Clock
	Sink  Sink
}

// Accumulator is a debounce state machine. It is Idle or Holding a
// candidate letter since some instant; a held letter is committed once it
// has been seen continuously for the dwell time, after which the
// accumulator returns to Idle so a sustained hold does not repeat.
//
// An Accumulator is not safe for concurrent use; it belongs to the frame loop.
type Accumulator struct {
	dwell time.Duration
	clock Clock
	sink  Sink

	holding bool
	letter  gesture.Letter
	since   time.Time

	letters []gesture.Letter
}

// New creates an Idle accumulator with an empty word.
func New(cfg Config) *Accumulator {
	if cfg.Dwell <= 0 {
		cfg.Dwell = DefaultDwell
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	return &Accumulator{
		dwell: cfg.Dwell,
		clock: cfg.Clock,
		sink:  cfg.Sink,
	}
}

// Add feeds the letter classified for the current frame. It returns true
// when the letter was committed to the word.
func (a *Accumulator) Add(l gesture.Letter) bool {
	now := a.clock.Now()

	if !a.holding || a.letter != l {
		a.holding = true
		a.letter = l
		a.since = now
		return false
	}

	if now.Sub(a.since) < a.dwell {
		return false
	}

	committed := false
	if l != gesture.Unknown {
		a.letters = append(a.letters, l)
		committed = true
	}
	a.reset()

	return committed
}

// Save writes the current word to the sink and empties it. Saving an empty
// word does nothing and returns nil. On a sink error the word is kept.
func (a *Accumulator) Save() (*Saved, error) {
	if len(a.letters) == 0 {
		return nil, nil
	}
	if a.sink == nil {
		return nil, ErrNoSink
	}

	w := a.Word()
	path, err := a.sink.Append(w)
	if err != nil {
		return nil, fmt.Errorf("save word %q: %w", w, err)
	}

	a.letters = nil
	return &Saved{Word: w, Path: path, At: a.clock.Now()}, nil
}

// Clear empties the word and drops any letter being held.
func (a *Accumulator) Clear() {
	a.letters = nil
	a.reset()
}

// Word returns the accumulated letters as a string.
func (a *Accumulator) Word() string {
	var b strings.Builder
	b.Grow(len(a.letters))
	for _, l := range a.letters {
		b.WriteByte(byte(l))
	}
	return b.String()
}

// Len returns the number of committed letters.
func (a *Accumulator) Len() int {
	return len(a.letters)
}

// Holding returns the letter being timed and when its hold started.
// ok is false when the accumulator is Idle.
func (a *Accumulator) Holding() (l gesture.Letter, since time.Time, ok bool) {
	return a.letter, a.since, a.holding
}

// Progress reports how much of the dwell time the held letter has
// accumulated, clamped to [0, 1]. It is 0 when Idle.
func (a *Accumulator) Progress() float64 {
	if !a.holding {
		return 0
	}
	p := float64(a.clock.Now().Sub(a.since)) / float64(a.dwell)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Dwell returns the configured dwell time.
func (a *Accumulator) Dwell() time.Duration {
	return a.dwell
}

func (a *Accumulator) reset() {
	a.holding = false
	a.letter = 0
	a.since = time.Time{}
}
