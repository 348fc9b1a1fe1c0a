package wordlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/fingerspell/internal/word"
)

func TestFileLog_Append(t *testing.T) {
	dir := t.TempDir()
	clk := word.NewFakeClock(time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local))
	log := New(dir, "", clk)

	path, err := log.Append("AV")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	wantName := "isaretdili_kelimeler_20240309_140507.txt"
	if filepath.Base(path) != wantName {
		t.Errorf("file name = %q, want %q", filepath.Base(path), wantName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if string(data) != "AV\n" {
		t.Errorf("log content = %q, want %q", data, "AV\n")
	}
}

func TestFileLog_AppendSameSecond(t *testing.T) {
	dir := t.TempDir()
	clk := word.NewFakeClock(time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local))
	log := New(dir, "words", clk)

	first, err := log.Append("AB")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	clk.Advance(300 * time.Millisecond)
	second, err := log.Append("LY")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if first != second {
		t.Fatalf("expected same file within one second, got %q and %q", first, second)
	}

	data, _ := os.ReadFile(first)
	if string(data) != "AB\nLY\n" {
		t.Errorf("log content = %q, want %q", data, "AB\nLY\n")
	}
}

func TestFileLog_NewFilePerSecond(t *testing.T) {
	dir := t.TempDir()
	clk := word.NewFakeClock(time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local))
	log := New(dir, "", clk)

	first, _ := log.Append("A")
	clk.Advance(time.Second)
	second, _ := log.Append("B")

	if first == second {
		t.Fatal("expected a new file for a later save")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 files, got %d", len(entries))
	}
}

func TestFileLog_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	log := New(dir, "", nil)

	path, err := log.Append("S")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("file dir = %q, want %q", filepath.Dir(path), dir)
	}
}

func TestFileLog_AsSink(t *testing.T) {
	dir := t.TempDir()
	clk := word.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))
	acc := word.New(word.Config{Clock: clk, Sink: New(dir, "", clk)})

	// Nothing to save: no file is created.
	if saved, err := acc.Save(); err != nil || saved != nil {
		t.Fatalf("Save() = %+v, %v", saved, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files for empty save, got %d", len(entries))
	}
}
