package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerspell/internal/app"
	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/server"
	"github.com/ayusman/fingerspell/internal/store"
	"github.com/ayusman/fingerspell/internal/word"
	"github.com/ayusman/fingerspell/internal/wordlog"
	"github.com/ayusman/fingerspell/testdata"
)

// handScript replays fixture hands, one per frame, and then reports no
// hand. Each call moves the clock forward by one frame.
type handScript struct {
	mu    sync.Mutex
	hands []detector.HandLandmarks
	clock *word.FakeClock
	calls int
}

func (d *handScript) Detect(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clock.Advance(100 * time.Millisecond)
	i := d.calls
	d.calls++
	if i >= len(d.hands) {
		return nil, nil
	}
	return []detector.HandLandmarks{d.hands[i]}, nil
}

func (d *handScript) Close() error { return nil }

func spell(t *testing.T, frames int, names ...string) []detector.HandLandmarks {
	t.Helper()
	var hands []detector.HandLandmarks
	for _, name := range names {
		h, err := testdata.LoadHand(name)
		if err != nil {
			t.Fatalf("LoadHand(%s) error = %v", name, err)
		}
		for i := 0; i < frames; i++ {
			hands = append(hands, h.Hand)
		}
	}
	return hands
}

// recordingHook installs a plugin that appends every request to a file.
func recordingHook(t *testing.T, pluginDir string) string {
	t.Helper()

	dir := filepath.Join(pluginDir, "recorder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	out := filepath.Join(t.TempDir(), "requests.jsonl")

	script := "#!/bin/sh\ncat >> " + out + "\necho >> " + out + "\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(dir, "recorder.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	manifest := `{"name":"recorder","version":"1.0.0","executable":"recorder.sh","actions":["record"]}`
	if err := os.WriteFile(filepath.Join(dir, plugin.ManifestFile), []byte(manifest), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func postCommand(t *testing.T, client *http.Client, url, cmd string) {
	t.Helper()
	resp, err := client.Post(url+"/api/commands", "application/json", strings.NewReader(`{"command":"`+cmd+`"}`))
	if err != nil {
		t.Fatalf("POST /api/commands error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("POST %s status = %d, want %d", cmd, resp.StatusCode, http.StatusAccepted)
	}
}

func TestE2E_SpellSaveOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("plugin script needs a POSIX shell")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	pluginDir := filepath.Join(tmpDir, "plugins")
	requests := recordingHook(t, pluginDir)
	manager := plugin.NewManager(pluginDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	hooks := plugin.NewDispatcher(manager, plugin.NewExecutor(0), []plugin.Hook{
		{Event: plugin.EventWordSaved, Plugin: "recorder", Action: "record"},
	})

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	clk := word.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local))
	logDir := filepath.Join(tmpDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	// 25 frames at 100ms cover the 2s dwell for each letter.
	application := app.New(app.Config{
		Camera:   capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		Detector: &handScript{hands: spell(t, 25, "l", "i", "v"), clock: clk},
		Clock:    clk,
		Sink:     wordlog.New(logDir, "", clk),
		Store:    s,
		Hooks:    hooks,
		Stream:   true,
	})
	defer application.Close()

	ts := httptest.NewServer(server.New(server.Config{Store: s, Recognizer: application}))
	defer ts.Close()
	client := ts.Client()

	snapshots, unsubscribe := application.Subscribe()
	defer unsubscribe()

	runErr := make(chan error, 1)
	go func() { runErr <- application.Run(context.Background()) }()

	t.Run("SpellWord", func(t *testing.T) {
		timeout := time.After(5 * time.Second)
		for {
			select {
			case snap := <-snapshots:
				if snap.Word == "LIV" {
					return
				}
			case <-timeout:
				t.Fatalf("word never reached LIV, last state %+v", application.Snapshot())
			}
		}
	})

	t.Run("SaveOverHTTP", func(t *testing.T) {
		postCommand(t, client, ts.URL, "save")

		waitFor(t, "saved word", func() bool {
			words, err := s.Words().List(0)
			return err == nil && len(words) == 1
		})

		resp, err := client.Get(ts.URL + "/api/words")
		if err != nil {
			t.Fatalf("GET /api/words error = %v", err)
		}
		var listed struct {
			Words []struct {
				Text    string `json:"text"`
				LogPath string `json:"log_path"`
			} `json:"words"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)
		resp.Body.Close()

		if len(listed.Words) != 1 || listed.Words[0].Text != "LIV" {
			t.Fatalf("listed = %+v, want LIV", listed.Words)
		}

		data, err := os.ReadFile(listed.Words[0].LogPath)
		if err != nil {
			t.Fatalf("reading word log: %v", err)
		}
		if string(data) != "LIV\n" {
			t.Errorf("word log = %q, want %q", data, "LIV\n")
		}
	})

	t.Run("StateIsCleared", func(t *testing.T) {
		waitFor(t, "cleared word", func() bool {
			snap := application.Snapshot()
			return snap.Word == "" && snap.LastSaved == "LIV"
		})
		if len(application.LatestJPEG()) == 0 {
			t.Error("expected a streamed frame")
		}
	})

	t.Run("QuitOverHTTP", func(t *testing.T) {
		postCommand(t, client, ts.URL, "quit")

		select {
		case err := <-runErr:
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Run() did not stop after quit")
		}
	})

	t.Run("HookReceivedWord", func(t *testing.T) {
		hooks.Wait()

		data, err := os.ReadFile(requests)
		if err != nil {
			t.Fatalf("reading hook requests: %v", err)
		}
		var req plugin.Request
		if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &req); err != nil {
			t.Fatalf("decoding hook request %q: %v", data, err)
		}
		if req.Event != plugin.EventWordSaved || req.Text != "LIV" || req.Action != "record" {
			t.Errorf("hook request = %+v", req)
		}
	})
}

func TestE2E_RecordedHandsOverState(t *testing.T) {
	hand, err := testdata.LoadHand("y")
	if err != nil {
		t.Fatalf("LoadHand() error = %v", err)
	}

	application := app.New(app.Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
		Clock:    word.NewFakeClock(time.Now()),
	})
	defer application.Close()

	ts := httptest.NewServer(server.New(server.Config{Recognizer: application}))
	defer ts.Close()

	application.Step(context.Background(), &hand.Hand, 640, 480)

	resp, err := ts.Client().Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state error = %v", err)
	}
	defer resp.Body.Close()

	var state struct {
		HandPresent bool   `json:"hand_present"`
		Letter      string `json:"letter"`
		Fingers     string `json:"fingers"`
		Holding     string `json:"holding"`
	}
	json.NewDecoder(resp.Body).Decode(&state)

	if !state.HandPresent || state.Letter != hand.Letter || state.Fingers != hand.Fingers {
		t.Errorf("state = %+v, want letter %s fingers %s", state, hand.Letter, hand.Fingers)
	}
	if state.Holding != "Y" {
		t.Errorf("holding = %q, want Y", state.Holding)
	}
}
