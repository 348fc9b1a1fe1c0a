// Package wordlog writes saved words to timestamped, append-only text files.
package wordlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/fingerspell/internal/word"
)

// DefaultPrefix is the file name prefix used when none is configured.
const DefaultPrefix = "isaretdili_kelimeler"

// TimestampLayout is the time layout embedded in each file name.
const TimestampLayout = "20060102_150405"

// FileLog creates one file per save named <prefix>_<timestamp>.txt.
// Saves within the same second share a file and append to it.
type FileLog struct {
	dir    string
	prefix string
	clock  word.Clock
}

// New creates a FileLog writing into dir. An empty prefix selects
// DefaultPrefix and a nil clock selects the system clock.
func New(dir, prefix string, clock word.Clock) *FileLog {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if clock == nil {
		clock = word.SystemClock{}
	}
	return &FileLog{dir: dir, prefix: prefix, clock: clock}
}

// FileName returns the file name used for a save at t.
func (l *FileLog) FileName(t time.Time) string {
	return fmt.Sprintf("%s_%s.txt", l.prefix, t.Format(TimestampLayout))
}

// Append writes word followed by a newline and returns the file path.
func (l *FileLog) Append(w string) (string, error) {
	if l.dir != "" {
		if err := os.MkdirAll(l.dir, 0755); err != nil {
			return "", fmt.Errorf("create log dir: %w", err)
		}
	}

	path := filepath.Join(l.dir, l.FileName(l.clock.Now()))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("open word log: %w", err)
	}

	if _, err := f.WriteString(w + "\n"); err != nil {
		f.Close()
		return "", fmt.Errorf("write word log: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close word log: %w", err)
	}

	return path, nil
}

// Dir returns the directory the log writes into.
func (l *FileLog) Dir() string {
	return l.dir
}
