// Package testdata provides recorded hand landmark fixtures for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ayusman/fingerspell/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

// Hand is one recorded hand pose with the result it should classify to.
type Hand struct {
	Name    string                 `json:"name"`
	Letter  string                 `json:"letter"`
	Fingers string                 `json:"fingers"`
	Hand    detector.HandLandmarks `json:"hand"`
}

// LoadHand loads a hand fixture by name, e.g. "a" or "three".
func LoadHand(name string) (*Hand, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load hand %s: %w", name, err)
	}

	var h Hand
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode hand %s: %w", name, err)
	}

	return &h, nil
}

// LoadHands loads every hand fixture, sorted by name.
func LoadHands() ([]*Hand, error) {
	entries, err := handsFS.ReadDir("hands")
	if err != nil {
		return nil, err
	}

	var hands []*Hand
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		h, err := LoadHand(strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
		if err != nil {
			return nil, err
		}
		hands = append(hands, h)
	}

	sort.Slice(hands, func(i, j int) bool { return hands[i].Name < hands[j].Name })
	return hands, nil
}

// MustLoadHand is LoadHand for tests; it panics on a missing fixture.
func MustLoadHand(name string) detector.HandLandmarks {
	h, err := LoadHand(name)
	if err != nil {
		panic(err)
	}
	return h.Hand
}
