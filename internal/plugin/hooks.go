package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Event names a recognizer event that hooks can subscribe to.
type Event string

const (
	// EventLetterCommitted fires when a held letter is appended to the word.
	EventLetterCommitted Event = "letter_committed"
	// EventWordSaved fires after a word was written to the word log.
	EventWordSaved Event = "word_saved"
)

// Valid reports whether e is a known event.
func (e Event) Valid() bool {
	return e == EventLetterCommitted || e == EventWordSaved
}

// ErrUnsupportedAction is returned when a hook names an action its plugin
// does not list in its manifest.
var ErrUnsupportedAction = errors.New("plugin does not support action")

// Hook binds an event to one plugin action.
type Hook struct {
	Event  Event             `yaml:"event" json:"event"`
	Plugin string            `yaml:"plugin" json:"plugin"`
	Action string            `yaml:"action" json:"action"`
	Params map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
}

// Validate checks that the hook names a known event, a plugin and an action.
func (h Hook) Validate() error {
	if !h.Event.Valid() {
		return fmt.Errorf("unknown hook event %q", h.Event)
	}
	if h.Plugin == "" {
		return fmt.Errorf("hook for %s: plugin is required", h.Event)
	}
	if h.Action == "" {
		return fmt.Errorf("hook for %s: action is required", h.Event)
	}
	return nil
}

// Dispatcher runs the hooks bound to an event. A nil Dispatcher fires nothing.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	hooks    []Hook
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over the discovered plugins of manager.
func NewDispatcher(manager *Manager, executor *Executor, hooks []Hook) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		hooks:    hooks,
	}
}

// Hooks returns the hooks bound to event, in configuration order.
func (d *Dispatcher) Hooks(event Event) []Hook {
	if d == nil {
		return nil
	}
	var matched []Hook
	for _, h := range d.hooks {
		if h.Event == event {
			matched = append(matched, h)
		}
	}
	return matched
}

// Fire starts every hook bound to event in its own goroutine and returns
// how many were started. Failures are logged.
func (d *Dispatcher) Fire(ctx context.Context, event Event, text string) int {
	hooks := d.Hooks(event)
	for _, h := range hooks {
		d.wg.Add(1)
		go func(h Hook) {
			defer d.wg.Done()
			resp, err := d.Run(ctx, h, text)
			if err != nil {
				log.Printf("Plugin hook %s/%s on %s failed: %v", h.Plugin, h.Action, event, err)
				return
			}
			if !resp.Success {
				log.Printf("Plugin hook %s/%s on %s returned error: %s", h.Plugin, h.Action, event, resp.Error)
			}
		}(h)
	}
	return len(hooks)
}

// Run executes a single hook synchronously.
func (d *Dispatcher) Run(ctx context.Context, h Hook, text string) (*Response, error) {
	p, err := d.manager.Get(h.Plugin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.Plugin, err)
	}
	if !p.Supports(h.Action) {
		return nil, fmt.Errorf("%s/%s: %w", h.Plugin, h.Action, ErrUnsupportedAction)
	}

	req := &Request{
		Action: h.Action,
		Event:  h.Event,
		Text:   text,
	}
	if len(h.Params) > 0 {
		params, err := json.Marshal(h.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = params
	}

	return d.executor.Execute(ctx, p, req)
}

// Wait blocks until every fired hook has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
