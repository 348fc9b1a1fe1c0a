package app

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/display"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/store"
)

// Run opens the camera and processes frames until a quit command, the end
// of ctx, or a frame source failure. The failure is returned wrapped in
// ErrFrameSource; there is no retry.
//
// Per frame:
// 1. Read a frame and detect hands
// 2. Project the first hand to pixels, extract fingers and classify the letter
// 3. Feed the letter to the word accumulator
// 4. Draw the overlay, show it and poll the keyboard
// 5. Apply queued commands from the tray and HTTP API
func (a *App) Run(ctx context.Context) error {
	if a.detectorErr != nil {
		return fmt.Errorf("%w: %w", ErrDetector, a.detectorErr)
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrFrameSource, err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	log.Println("Recognition loop started")
	defer log.Println("Recognition loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFrameSource, err)
		}

		quit := a.processFrame(ctx, frame)
		frame.Close()

		if quit || a.drainCommands(ctx) {
			return nil
		}
	}
}

// processFrame runs one frame through detection, recognition and display.
// It reports whether a quit key was pressed.
func (a *App) processFrame(ctx context.Context, frame *gocv.Mat) bool {
	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		hands = nil
	}

	snap := a.step(ctx, detector.First(hands), frame.Cols(), frame.Rows())

	if a.screen != nil || a.config.Stream {
		display.Draw(frame, snap.Overlay())
	}
	if a.config.Stream {
		a.encodeFrame(frame)
	}
	a.publish(snap)

	if a.screen == nil {
		return false
	}
	a.screen.Show(frame)
	if cmd := KeyCommand(a.screen.PollKey()); cmd != CommandNone {
		return a.Apply(ctx, cmd)
	}
	return false
}

// Step recognizes one frame's hand, feeds the accumulator and publishes the
// result. A nil hand skips recognition; the word is left untouched.
// Step must only be called from the goroutine that owns the loop.
func (a *App) Step(ctx context.Context, hand *detector.HandLandmarks, width, height int) Snapshot {
	snap := a.step(ctx, hand, width, height)
	a.publish(snap)
	return snap
}

func (a *App) step(ctx context.Context, hand *detector.HandLandmarks, width, height int) Snapshot {
	a.frames++
	snap := Snapshot{
		Frame: a.frames,
		At:    a.clock.Now(),
	}

	if hand != nil {
		set := hand.Project(width, height)
		fingers, letter := gesture.Recognize(&set)

		snap.HandPresent = true
		snap.Landmarks = &set
		snap.Fingers = fingers
		snap.Letter = letter
		snap.Description, _ = letter.Description()

		if a.acc.Add(letter) {
			log.Printf("Letter committed: %s (word: %s)", letter, a.acc.Word())
			a.hooks.Fire(ctx, plugin.EventLetterCommitted, letter.String())
		}
	}

	a.fillWordState(&snap)
	return snap
}

func (a *App) fillWordState(snap *Snapshot) {
	snap.Word = a.acc.Word()
	snap.Holding, snap.Progress = 0, 0
	if l, _, ok := a.acc.Holding(); ok {
		snap.Holding = l
		snap.Progress = a.acc.Progress()
	}
	snap.LastSaved = a.lastSaved
}

// Apply executes cmd and reports whether the loop should stop.
// Apply must only be called from the goroutine that owns the loop.
func (a *App) Apply(ctx context.Context, cmd Command) bool {
	switch cmd {
	case CommandQuit:
		log.Println("Quit requested")
		return true
	case CommandSave:
		a.save(ctx)
	case CommandClear:
		a.acc.Clear()
		log.Println("Word cleared")
	default:
		return false
	}

	snap := a.Snapshot()
	a.fillWordState(&snap)
	a.publish(snap)
	return false
}

func (a *App) drainCommands(ctx context.Context) bool {
	for {
		select {
		case cmd := <-a.commands:
			if a.Apply(ctx, cmd) {
				return true
			}
		default:
			return false
		}
	}
}

// save writes the word to the log. Only after that succeeds is it recorded
// in the history store and passed to hooks. A failed save keeps the word.
func (a *App) save(ctx context.Context) {
	saved, err := a.acc.Save()
	if err != nil {
		log.Printf("Failed to save word: %v", err)
		return
	}
	if saved == nil {
		log.Println("Nothing to save")
		return
	}

	log.Printf("Word saved: %s -> %s", saved.Word, saved.Path)
	a.lastSaved = saved.Word

	if a.store != nil {
		rec := &store.Word{
			ID:      uuid.New().String(),
			Text:    saved.Word,
			LogPath: saved.Path,
			SavedAt: saved.At,
		}
		if err := a.store.Words().Create(rec); err != nil {
			log.Printf("Failed to record word history: %v", err)
		}
	}

	a.hooks.Fire(ctx, plugin.EventWordSaved, saved.Word)

	for _, fn := range a.savedCallbacks() {
		fn(*saved)
	}
}

func (a *App) encodeFrame(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	a.mu.Lock()
	a.jpeg = data
	a.mu.Unlock()
}
