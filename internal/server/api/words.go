// Package api provides the JSON HTTP handlers of the fingerspelling recognizer.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/fingerspell/internal/store"
)

// DefaultWordLimit is how many words GET /api/words returns without ?limit.
const DefaultWordLimit = 50

// WordHandler serves the saved-word history.
type WordHandler struct {
	store *store.Store
}

// NewWordHandler creates a new WordHandler with the given store.
func NewWordHandler(s *store.Store) *WordHandler {
	return &WordHandler{store: s}
}

// ServeHTTP routes /api/words and /api/words/{id}.
func (h *WordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/words")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type wordResponse struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Length  int    `json:"length"`
	LogPath string `json:"log_path"`
	SavedAt string `json:"saved_at"`
}

type listWordsResponse struct {
	Words []wordResponse `json:"words"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(word *store.Word) wordResponse {
	return wordResponse{
		ID:      word.ID,
		Text:    word.Text,
		Length:  word.Length,
		LogPath: word.LogPath,
		SavedAt: word.SavedAt.Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/words?limit=N, newest first. limit=0 returns all.
func (h *WordHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultWordLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	words, err := h.store.Words().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list words")
		return
	}

	response := listWordsResponse{
		Words: make([]wordResponse, 0, len(words)),
	}
	for _, word := range words {
		response.Words = append(response.Words, toResponse(word))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/words/{id}.
func (h *WordHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	word, err := h.store.Words().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Word not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get word")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(word))
}

// delete handles DELETE /api/words/{id}. The word log file is not touched.
func (h *WordHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Words().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Word not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete word")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
