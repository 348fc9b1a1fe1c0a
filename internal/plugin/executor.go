package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single plugin run.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when a plugin does not finish in time.
var ErrTimeout = errors.New("plugin execution timeout")

// Executor runs plugin executables with a per-run timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor. A non-positive timeout selects DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Timeout returns the per-run timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute runs a plugin with the given request and returns the response.
// The request is sent as JSON on stdin and stdout is parsed as a Response.
// The run is cancelled when ctx ends or the timeout elapses.
func (e *Executor) Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, plugin.Executable)
	cmd.Dir = plugin.Path
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}

	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("plugin execution failed: %w, stderr: %s", err, s)
		}
		return nil, fmt.Errorf("plugin execution failed: %w", err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse plugin response: %w, stdout: %s", err, stdout.String())
	}

	return &response, nil
}
