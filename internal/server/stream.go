package server

import (
	"fmt"
	"net/http"
)

// StreamHandler serves the annotated frames as MJPEG.
type StreamHandler struct {
	recognizer Recognizer
}

// NewStreamHandler creates a new StreamHandler for r.
func NewStreamHandler(r Recognizer) *StreamHandler {
	return &StreamHandler{recognizer: r}
}

// ServeHTTP writes one JPEG part per published snapshot until the client
// goes away or the recognizer stops publishing.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshots, unsubscribe := h.recognizer.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if err := writeFrame(w, h.recognizer.LatestJPEG()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writeFrame(w, h.recognizer.LatestJPEG()); err != nil {
				return
			}
		}
	}
}

// writeFrame writes a single MJPEG part. Empty frames are skipped.
func writeFrame(w http.ResponseWriter, jpeg []byte) error {
	if len(jpeg) == 0 {
		return nil
	}

	fmt.Fprintf(w, "--frame\r\n")
	fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
	fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
		return err
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
