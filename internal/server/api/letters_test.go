package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/fingerspell/internal/gesture"
)

func TestLettersHandler(t *testing.T) {
	s := newTestStore(t)
	seedWords(t, s, "AV", "VAV")

	handler := NewLettersHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/letters", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp listLettersResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Letters) != len(gesture.Alphabet) {
		t.Fatalf("expected %d letters, got %d", len(gesture.Alphabet), len(resp.Letters))
	}

	byLetter := map[string]letterResponse{}
	for _, l := range resp.Letters {
		byLetter[l.Letter] = l
	}
	if byLetter["V"].Saved != 3 {
		t.Errorf("expected V saved 3 times, got %d", byLetter["V"].Saved)
	}
	if byLetter["A"].Saved != 2 {
		t.Errorf("expected A saved 2 times, got %d", byLetter["A"].Saved)
	}
	if byLetter["A"].Description != "Thumb open, others closed" {
		t.Errorf("unexpected description %q", byLetter["A"].Description)
	}
}

func TestLettersHandler_NoStore(t *testing.T) {
	handler := NewLettersHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/letters", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/letters", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}
