package errlog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes extended failure reports to stdout and an append-only
// file. Each report carries a short correlation id that is also shown
// to the user, so a support request can be matched to the full trace.
type Logger struct {
	path string
	loc  *time.Location
	mu   sync.Mutex
}

func New(path string, loc *time.Location) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &Logger{path: path, loc: loc}, nil
}

// NewID returns an 8-hex correlation id.
func NewID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:4])
}

// Report logs the failure with its id and context. A nil Logger still
// logs to stdout. File write failures are logged and swallowed:
// error reporting must never fail the caller.
func (l *Logger) Report(errorID, where string, err error, extra map[string]any) {
	var b strings.Builder
	b.WriteString("\n" + strings.Repeat("=", 90) + "\n")
	ts := time.Now()
	if l != nil && l.loc != nil {
		ts = ts.In(l.loc)
	}
	fmt.Fprintf(&b, "%s | error_id=%s | where=%s\n", ts.Format(time.RFC3339), errorID, where)
	fmt.Fprintf(&b, "Error: %v\n", err)
	if len(extra) > 0 {
		if data, jerr := json.Marshal(extra); jerr == nil {
			fmt.Fprintf(&b, "Extra: %s\n", data)
		} else {
			fmt.Fprintf(&b, "Extra (raw): %v\n", extra)
		}
	}
	b.WriteString(strings.Repeat("=", 90) + "\n")

	report := b.String()
	log.Print(report)

	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, ferr := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if ferr != nil {
		log.Printf("⚠️ failed to open error log: %v", ferr)
		return
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	if _, werr := f.WriteString(report); werr != nil {
		log.Printf("⚠️ failed to write error log: %v", werr)
	}
}

// Path returns the error log file location for user-facing hints.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
