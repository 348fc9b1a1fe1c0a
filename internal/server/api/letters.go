package api

import (
	"net/http"

	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/store"
)

// LettersHandler serves the alphabet. With a store it also reports how
// often each letter appears in saved words.
type LettersHandler struct {
	store *store.Store
}

// NewLettersHandler creates a LettersHandler. s may be nil.
func NewLettersHandler(s *store.Store) *LettersHandler {
	return &LettersHandler{store: s}
}

type letterResponse struct {
	Letter      string `json:"letter"`
	Description string `json:"description"`
	Saved       int    `json:"saved"`
}

type listLettersResponse struct {
	Letters []letterResponse `json:"letters"`
}

// ServeHTTP handles GET /api/letters.
func (h *LettersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts := map[string]int{}
	if h.store != nil {
		rows, err := h.store.Words().LetterCounts()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to count letters")
			return
		}
		for _, c := range rows {
			counts[c.Letter] = c.Count
		}
	}

	response := listLettersResponse{
		Letters: make([]letterResponse, 0, len(gesture.Alphabet)),
	}
	for _, l := range gesture.Alphabet {
		desc, _ := l.Description()
		response.Letters = append(response.Letters, letterResponse{
			Letter:      l.String(),
			Description: desc,
			Saved:       counts[l.String()],
		})
	}

	writeJSON(w, http.StatusOK, response)
}
