package detector

import (
	"log"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int `yaml:"max_hands"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// Script overrides the landmark service location.
	Script string `yaml:"script"`

	// Mock selects the mock detector, which never reports a hand.
	Mock bool `yaml:"mock"`
}

// DefaultConfig returns a Config tuned for single-hand fingerspelling.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}

// New returns the detector cfg selects. Unless cfg.Mock is set this is the
// MediaPipe service, started and checked here; a missing or broken service
// is an error rather than a silent fallback.
func New(cfg Config) (Detector, error) {
	if cfg.Mock {
		log.Println("Using mock hand detection: no hands will be detected")
		return NewMockDetector(), nil
	}

	mp, err := NewMediaPipeDetector(cfg)
	if err != nil {
		return nil, err
	}
	if err := mp.Start(); err != nil {
		return nil, err
	}

	log.Printf("Using MediaPipe hand detection (%s)", mp.ScriptPath())
	return mp, nil
}

// First returns the first detected hand, or nil when hands is empty.
// Only one hand takes part in recognition; extra hands are ignored.
func First(hands []HandLandmarks) *HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	return &hands[0]
}
