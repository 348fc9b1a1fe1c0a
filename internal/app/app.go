// Package app runs the fingerspelling frame loop: it reads camera frames,
// detects the hand, classifies the letter and accumulates words.
package app

import (
	"errors"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/store"
	"github.com/ayusman/fingerspell/internal/word"
)

// CommandQueueSize is how many commands may wait for the frame loop.
const CommandQueueSize = 16

var (
	// ErrFrameSource wraps camera failures that end the frame loop.
	ErrFrameSource = errors.New("frame source failed")

	// ErrDetector is returned by Run when no hand detector could be set up.
	ErrDetector = errors.New("hand detector unavailable")

	// ErrQueueFull is returned by Send when the command queue is full.
	ErrQueueFull = errors.New("command queue full")
)

// Screen shows rendered frames and reports key presses.
type Screen interface {
	Show(img *gocv.Mat)
	PollKey() int
	Close() error
}

// Config holds the application's collaborators and settings.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector

	// DetectorConfig selects the detector when Detector is nil. If that
	// detector cannot start, Run fails with ErrDetector.
	DetectorConfig detector.Config

	Dwell time.Duration
	Clock word.Clock
	Sink  word.Sink

	// Store records saved words when set.
	Store *store.Store

	// Hooks runs plugin actions on commits and saves when set.
	Hooks *plugin.Dispatcher

	// Screen displays the rendered frames. Nil runs headless.
	Screen Screen

	// Stream keeps a JPEG of the latest rendered frame for observers.
	Stream bool
}

// App owns the frame loop and the word accumulator. Only the loop touches
// the accumulator; other goroutines use Send and Snapshot.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	acc      *word.Accumulator
	clock    word.Clock
	store    *store.Store
	hooks    *plugin.Dispatcher
	screen   Screen
	commands chan Command

	detectorErr error

	frames    uint64
	lastSaved string

	mu       sync.RWMutex
	snapshot Snapshot
	jpeg     []byte
	subs     map[chan Snapshot]struct{}
	onSaved  []func(word.Saved)
}

// New creates a new App with the given configuration.
func New(config Config) *App {
	if config.Clock == nil {
		config.Clock = word.SystemClock{}
	}

	a := &App{
		config: config,
		camera: config.Camera,
		acc: word.New(word.Config{
			Dwell: config.Dwell,
			Clock: config.Clock,
			Sink:  config.Sink,
		}),
		clock:    config.Clock,
		store:    config.Store,
		hooks:    config.Hooks,
		screen:   config.Screen,
		detector: config.Detector,
		commands: make(chan Command, CommandQueueSize),
		subs:     make(map[chan Snapshot]struct{}),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DefaultConfig())
	}

	// Run refuses to start without a working detector.
	if a.detector == nil {
		d, err := detector.New(config.DetectorConfig)
		if err != nil {
			log.Printf("Hand detector unavailable: %v", err)
			a.detectorErr = err
		} else {
			a.detector = d
		}
	}

	return a
}

// Send queues cmd for the frame loop without blocking.
func (a *App) Send(cmd Command) error {
	select {
	case a.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Snapshot returns the most recently published frame result.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// LatestJPEG returns the last rendered frame as JPEG, or nil when
// streaming is disabled or no frame was rendered yet.
func (a *App) LatestJPEG() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jpeg
}

// Subscribe returns a channel receiving every published snapshot. Slow
// receivers only see the newest one. The returned func unsubscribes and
// closes the channel.
func (a *App) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	a.mu.Lock()
	a.subs[ch] = struct{}{}
	a.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, ch)
			a.mu.Unlock()
			close(ch)
		})
	}
}

// OnSaved registers fn to be called on the loop goroutine after each save.
func (a *App) OnSaved(fn func(word.Saved)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSaved = append(a.onSaved, fn)
}

// SetDetector sets the hand detector implementation to use.
// It must not be called while Run is active.
func (a *App) SetDetector(d detector.Detector) {
	a.detector = d
	a.detectorErr = nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// Close releases the detector and the screen.
func (a *App) Close() error {
	var errs []error
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.screen != nil {
		if err := a.screen.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) publish(snap Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snapshot = snap
	for ch := range a.subs {
		select {
		case ch <- snap:
		default:
			// Replace the unread snapshot with the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (a *App) savedCallbacks() []func(word.Saved) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]func(word.Saved){}, a.onSaved...)
}
