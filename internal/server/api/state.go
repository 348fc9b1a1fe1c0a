package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/fingerspell/internal/app"
)

// SnapshotSource returns the latest recognizer output.
type SnapshotSource interface {
	Snapshot() app.Snapshot
}

// CommandSender queues commands for the frame loop.
type CommandSender interface {
	Send(cmd app.Command) error
}

// StateHandler serves GET /api/state.
type StateHandler struct {
	source SnapshotSource
}

// NewStateHandler creates a StateHandler reading from source.
func NewStateHandler(source SnapshotSource) *StateHandler {
	return &StateHandler{source: source}
}

// ServeHTTP writes the latest snapshot.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.source.Snapshot())
}

// CommandHandler serves POST /api/commands.
type CommandHandler struct {
	sender CommandSender
}

// NewCommandHandler creates a CommandHandler queueing to sender.
func NewCommandHandler(sender CommandSender) *CommandHandler {
	return &CommandHandler{sender: sender}
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Command string `json:"command"`
	Status  string `json:"status"`
}

// ServeHTTP parses {"command": "save"|"clear"|"quit"} and queues it. The
// command runs on the next frame, so the response is 202 Accepted.
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cmd, err := app.ParseCommand(req.Command)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown command")
		return
	}

	if err := h.sender.Send(cmd); err != nil {
		if errors.Is(err, app.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "Command queue full")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to queue command")
		return
	}

	writeJSON(w, http.StatusAccepted, commandResponse{Command: cmd.String(), Status: "queued"})
}
