package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/fingerspell/internal/app"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// wsCommand is a client message on the snapshot socket.
type wsCommand struct {
	Command string `json:"command"`
}

// SnapshotsHandler pushes every published snapshot to WebSocket clients.
// Clients may send {"command": "save"} style messages back.
type SnapshotsHandler struct {
	recognizer Recognizer
}

// NewSnapshotsHandler creates a SnapshotsHandler for r.
func NewSnapshotsHandler(r Recognizer) *SnapshotsHandler {
	return &SnapshotsHandler{recognizer: r}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SnapshotsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	snapshots, unsubscribe := h.recognizer.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go h.readCommands(conn, done)

	// The current state goes out first so a new client never starts blank.
	if err := writeSnapshot(conn, h.recognizer.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writeSnapshot(conn, snap); err != nil {
				return
			}
		}
	}
}

// readCommands queues client commands until the connection closes.
func (h *SnapshotsHandler) readCommands(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wsCommand
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		cmd, err := app.ParseCommand(msg.Command)
		if err != nil {
			continue
		}
		if err := h.recognizer.Send(cmd); err != nil {
			log.Printf("websocket command %s: %v", cmd, err)
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap app.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}
