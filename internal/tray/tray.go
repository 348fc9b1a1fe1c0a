// Package tray provides a system tray menu for the fingerspelling recognizer.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray menu.
type Tray struct {
	onSave  func()
	onClear func()
	onQuit  func()
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuWord     *systray.MenuItem
	menuLastWord *systray.MenuItem
	word         string
	lastWord     string
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnSave sets the callback for the "Save word" item.
func (t *Tray) OnSave(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSave = fn
}

// OnClear sets the callback for the "Clear word" item.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main thread.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("fingerspell")
	systray.SetTooltip("Fingerspelling recognizer")

	t.mu.Lock()
	t.menuWord = systray.AddMenuItem(wordTitle(t.word), "Word being spelled")
	t.menuWord.Disable()
	t.menuLastWord = systray.AddMenuItem(lastWordTitle(t.lastWord), "Last saved word")
	t.menuLastWord.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSave := systray.AddMenuItem("Save word", "Append the current word to the log")
	menuClear := systray.AddMenuItem("Clear word", "Discard the current word")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit fingerspell")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuSave.ClickedCh:
				t.handle(t.saveCallback())
			case <-menuClear.ClickedCh:
				t.handle(t.clearCallback())
			case <-menuQuit.ClickedCh:
				t.handle(t.quitCallback())
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func (t *Tray) saveCallback() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onSave
}

func (t *Tray) clearCallback() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onClear
}

func (t *Tray) quitCallback() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onQuit
}

// handle calls fn outside the lock.
func (t *Tray) handle(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetWord updates the current word display in the menu.
func (t *Tray) SetWord(word string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if word == t.word {
		return
	}
	t.word = word
	if t.menuWord != nil {
		t.menuWord.SetTitle(wordTitle(word))
	}
}

// SetLastWord updates the last saved word display in the menu.
func (t *Tray) SetLastWord(word string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastWord = word
	if t.menuLastWord != nil {
		t.menuLastWord.SetTitle(lastWordTitle(word))
	}
}

// LastWord returns the last word passed to SetLastWord.
func (t *Tray) LastWord() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastWord
}

func wordTitle(word string) string {
	if word == "" {
		return "Word: -"
	}
	return "Word: " + word
}

func lastWordTitle(word string) string {
	if word == "" {
		return "Last: none"
	}
	return "Last: " + word
}
