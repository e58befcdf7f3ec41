package loop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RunLog is the append-only log of raw agent output for one ralph
// invocation. It mirrors the last non-empty line in memory so the
// terminal-signal check never re-reads the file; ordering is always
// append first, then update the mirror.
type RunLog struct {
	path string
	file *os.File
	last string
}

// OpenRunLog opens path for appending, creating parent directories as
// needed. The file is never rotated or truncated during a run.
func OpenRunLog(path string) (*RunLog, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &RunLog{path: path, file: f}, nil
}

// Append writes one raw line verbatim and then updates the last-line mirror.
func (l *RunLog) Append(line string) error {
	if _, err := l.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	if s := strings.TrimSpace(line); s != "" {
		l.last = s
	}
	return nil
}

// LastLine returns the most recent non-empty line appended during this run,
// or "" when nothing has been written yet.
func (l *RunLog) LastLine() string { return l.last }

func (l *RunLog) Path() string { return l.path }

func (l *RunLog) Close() error { return l.file.Close() }
