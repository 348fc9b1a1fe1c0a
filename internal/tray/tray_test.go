package tray

import "testing"

func TestTray_CallbacksBeforeRun(t *testing.T) {
	tr := New()

	var saved, cleared, quit int
	tr.OnSave(func() { saved++ })
	tr.OnClear(func() { cleared++ })
	tr.OnQuit(func() { quit++ })

	tr.handle(tr.saveCallback())
	tr.handle(tr.clearCallback())
	tr.handle(tr.clearCallback())
	tr.handle(tr.quitCallback())

	if saved != 1 || cleared != 2 || quit != 1 {
		t.Errorf("callbacks = save %d, clear %d, quit %d", saved, cleared, quit)
	}
}

func TestTray_NilCallbacks(t *testing.T) {
	tr := New()
	tr.handle(tr.saveCallback())
	tr.handle(tr.quitCallback())
}

func TestTray_WordsBeforeRun(t *testing.T) {
	tr := New()

	tr.SetWord("AV")
	tr.SetLastWord("LIVE")

	if tr.LastWord() != "LIVE" {
		t.Errorf("LastWord() = %q, want LIVE", tr.LastWord())
	}
	if got := wordTitle(""); got != "Word: -" {
		t.Errorf("wordTitle(\"\") = %q", got)
	}
	if got := lastWordTitle("AV"); got != "Last: AV" {
		t.Errorf("lastWordTitle(AV) = %q", got)
	}
}
