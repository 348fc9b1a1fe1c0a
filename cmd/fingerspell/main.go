package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/fingerspell/internal/app"
	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/config"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/display"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/server"
	"github.com/ayusman/fingerspell/internal/store"
	"github.com/ayusman/fingerspell/internal/tray"
	"github.com/ayusman/fingerspell/internal/word"
	"github.com/ayusman/fingerspell/internal/wordlog"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	camera := flag.Int("camera", 0, "camera device id")
	addr := flag.String("addr", "", "HTTP listen address, empty disables the server")
	headless := flag.Bool("headless", false, "run without a window")
	useTray := flag.Bool("tray", false, "run from the system tray instead of a window")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	fmt.Println("fingerspell - Fingerspelling Recognition")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line win over the file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.Camera.DeviceID = *camera
		case "addr":
			cfg.HTTP.Addr = *addr
		case "headless":
			cfg.Headless = *headless
		case "tray":
			cfg.Tray = *useTray
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fingerspell failed: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	manager := plugin.NewManager(cfg.PluginDir())
	if err := manager.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	log.Printf("Found %d plugins in %s", len(manager.List()), manager.PluginDir())
	hooks := plugin.NewDispatcher(manager, plugin.NewExecutor(cfg.Plugins.Timeout), cfg.Plugins.Hooks)
	defer hooks.Wait()

	det, err := detector.New(cfg.Detector)
	if err != nil {
		return fmt.Errorf("initialize hand detector (set detector.mock to run without one): %w", err)
	}

	var screen app.Screen
	if !cfg.Headless && !cfg.Tray {
		screen = display.NewWindow(display.Title, cfg.Windowed)
	}

	clock := word.SystemClock{}
	a := app.New(app.Config{
		Camera:         capture.NewCamera(cfg.Camera),
		Detector:       det,
		Dwell:          cfg.Dwell,
		Clock:          clock,
		Sink:           wordlog.New(cfg.Log.Dir, cfg.Log.Prefix, clock),
		Store:          st,
		Hooks:          hooks,
		Screen:         screen,
		Stream:         cfg.HTTP.Addr != "",
	})
	defer a.Close()

	if cfg.HTTP.Addr != "" {
		httpSrv := startServer(cfg, st, a)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}()
	}

	if !cfg.Tray {
		return a.Run(ctx)
	}

	// The tray owns the main thread; the frame loop runs beside it.
	t := tray.New()
	t.OnSave(func() { send(a, app.CommandSave) })
	t.OnClear(func() { send(a, app.CommandClear) })
	t.OnQuit(func() { send(a, app.CommandQuit) })
	a.OnSaved(func(s word.Saved) { t.SetLastWord(s.Word) })

	snapshots, unsubscribe := a.Subscribe()
	defer unsubscribe()
	go func() {
		for snap := range snapshots {
			t.SetWord(snap.Word)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		t.Quit()
	}()

	t.Run()
	stop()
	return <-errCh
}

func send(a *app.App, cmd app.Command) {
	if err := a.Send(cmd); err != nil {
		log.Printf("Failed to send %s: %v", cmd, err)
	}
}

func startServer(cfg *config.Config, st *store.Store, a *app.App) *http.Server {
	webDir := cfg.HTTP.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		log.Printf("Serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Recognizer: a,
	})
	httpSrv := srv.HTTPServer(cfg.HTTP.Addr)

	go func() {
		log.Printf("Starting server on %s", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
		}
	}()
	return httpSrv
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <data dir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
