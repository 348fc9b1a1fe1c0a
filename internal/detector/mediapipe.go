package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ServiceScript is the file name of the Python landmark service.
const ServiceScript = "hand_landmarks.py"

// idleShutdown is how long the service may sit unused before it is stopped.
const idleShutdown = 30 * time.Second

// readyTimeout bounds how long the service may take to load MediaPipe.
var readyTimeout = 60 * time.Second

var (
	// ErrServiceNotFound is returned when the landmark service script
	// cannot be located.
	ErrServiceNotFound = errors.New("landmark service script not found")

	// ErrServiceUnavailable is returned when the landmark service does
	// not start or stops answering.
	ErrServiceUnavailable = errors.New("landmark service unavailable")
)

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Protocol: on start the service writes {"ready": true} once MediaPipe has
// loaded. Each frame is then sent as a 4-byte big-endian length followed by
// JPEG bytes on stdin; the service answers with one JSON line
// {"hands": [{"points": [...], "handedness": "...", "score": ...}]}.
type MediaPipeDetector struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	idleTimer  *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector using config.Script,
// or the first scripts/hand_landmarks.py found near the working directory,
// the executable or ~/.fingerspell. The Python process is started by Start
// or lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := config.Script
	if scriptPath != "" {
		if _, err := os.Stat(scriptPath); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrServiceNotFound, err)
		}
	} else if scriptPath = findServiceScript(); scriptPath == "" {
		return nil, fmt.Errorf("%w: no scripts/%s near the working directory, the executable or ~/.fingerspell",
			ErrServiceNotFound, ServiceScript)
	}

	return &MediaPipeDetector{
		config:     config,
		scriptPath: scriptPath,
	}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return nil, d.fail(fmt.Errorf("write length: %w", err))
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, d.fail(fmt.Errorf("write data: %w", err))
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, d.fail(fmt.Errorf("read response: %w", err))
	}

	hands, err := ParseResponse([]byte(line))
	if err != nil {
		return nil, err
	}

	d.resetIdleTimer()
	return hands, nil
}

// Start launches the service and waits for its ready line, so a broken
// installation is reported before the first frame.
func (d *MediaPipeDetector) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return err
	}
	d.resetIdleTimer()
	return nil
}

// ScriptPath returns the service script in use.
func (d *MediaPipeDetector) ScriptPath() string {
	return d.scriptPath
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

// ParseResponse decodes one JSON line written by the landmark service.
// Hands with fewer than NumLandmarks points are dropped.
func ParseResponse(line []byte) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		if len(h.Points) < NumLandmarks {
			continue
		}
		result = append(result, h.toHandLandmarks())
	}

	return result, nil
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, append([]string{d.scriptPath}, d.serviceArgs()...)...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("%w: start: %w", ErrServiceUnavailable, err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	if err := d.awaitReady(); err != nil {
		return d.fail(err)
	}
	return nil
}

// awaitReady reads the service's first line.
func (d *MediaPipeDetector) awaitReady() error {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func(r *bufio.Reader) {
		line, err := r.ReadString('\n')
		ch <- result{line, err}
	}(d.stdout)

	select {
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("service exited before ready: %w", r.err)
		}
		var msg struct {
			Ready bool   `json:"ready"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(r.line), &msg); err != nil {
			return fmt.Errorf("parse ready line %q: %w", r.line, err)
		}
		if !msg.Ready {
			return fmt.Errorf("service not ready: %s", msg.Error)
		}
		return nil
	case <-time.After(readyTimeout):
		return fmt.Errorf("no ready line after %s", readyTimeout)
	}
}

// fail stops a service that broke the protocol so the next call starts a
// fresh one.
func (d *MediaPipeDetector) fail(err error) error {
	if d.cmd != nil && d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.shutdown()
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}

// serviceArgs passes the detection thresholds to the Python service.
func (d *MediaPipeDetector) serviceArgs() []string {
	return []string{
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	}
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", ServiceScript),
		filepath.Join("..", "scripts", ServiceScript),
		filepath.Join("..", "..", "scripts", ServiceScript),
		filepath.Join(execDir, "scripts", ServiceScript),
		filepath.Join(os.Getenv("HOME"), ".fingerspell", "scripts", ServiceScript),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".fingerspell/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	copy(lm.Points[:], h.Points)
	return lm
}
