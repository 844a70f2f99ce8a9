// Package diagnostic writes the plain-text log of malformed remote responses.
package diagnostic

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Recorder accepts one diagnostic event at a time.
type Recorder interface {
	Record(prefix, payload string) error
}

// Log appends one line per event to a file. The file is opened per write so
// the handle never outlives a single event.
type Log struct {
	path string
	mu   sync.Mutex
}

// New returns a Log writing to path.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the backing file path.
func (l *Log) Path() string {
	return l.path
}

// Record appends "<prefix>: <payload>" as a single line.
func (l *Log) Record(prefix, payload string) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open diagnostic log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close diagnostic log: %w", cerr)
		}
	}()

	if _, err = fmt.Fprintf(f, "%s: %s\n", prefix, oneLine(payload)); err != nil {
		return fmt.Errorf("failed to write diagnostic log: %w", err)
	}
	return nil
}

// Discard drops every event.
type Discard struct{}

// Record implements Recorder.
func (Discard) Record(string, string) error { return nil }

var lineBreaks = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`)

func oneLine(s string) string {
	return lineBreaks.Replace(s)
}
