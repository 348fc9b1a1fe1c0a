package display

import (
	"sync"

	"gocv.io/x/gocv"
)

// NoKey is returned by PollKey when no key was pressed.
const NoKey = -1

// Window is an OpenCV HighGUI window. It must be used from the goroutine
// that created it.
type Window struct {
	win    *gocv.Window
	closed bool
	mu     sync.Mutex
}

// NewWindow opens a window titled title, fullscreen unless windowed is set.
func NewWindow(title string, windowed bool) *Window {
	win := gocv.NewWindow(title)
	if !windowed {
		win.SetWindowProperty(gocv.WindowPropertyFullscreen, gocv.WindowFullscreen)
	}
	return &Window{win: win}
}

// Show displays img.
func (w *Window) Show(img *gocv.Mat) {
	w.win.IMShow(*img)
}

// PollKey waits 1 ms for a key press and returns its low byte, or NoKey.
func (w *Window) PollKey() int {
	key := w.win.WaitKey(1)
	if key < 0 {
		return NoKey
	}
	return key & 0xFF
}

// Close destroys the window. Closing twice is a no-op.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.win.Close()
}
