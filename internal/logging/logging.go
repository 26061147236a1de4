// Package logging owns the per-invocation execution log: a structured console
// logger plus a plain-text log file that always receives the full subprocess
// output, regardless of the console verbosity.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Verbosity levels accepted by --verbosity-level.
const (
	Silent = "silent"
	Normal = "normal"
	Full   = "full"
)

// ValidVerbosity reports whether v names a known verbosity level.
func ValidVerbosity(v string) bool {
	return v == Silent || v == Normal || v == Full
}

// Session is the execution log for one orchestrator run.
type Session struct {
	Console *log.Logger

	path      string
	file      *os.File
	verbosity string
	discard   int // echo only every Nth subprocess line, 0 = all
	tail      int // keep last N lines for failure reporting, 0 = none

	mu     sync.Mutex
	lineNo int
	ring   []string
}

// New opens the log file under dir and configures the console logger.
// Styled output is disabled when stderr is not a terminal.
func New(dir, verbosity string, discard, tail int) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "log.txt")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	level := log.InfoLevel
	if verbosity == Full {
		level = log.DebugLevel
	}
	opts := log.Options{
		Level:           level,
		ReportTimestamp: false,
		Prefix:          "mason",
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		opts.Formatter = log.LogfmtFormatter
	}
	console := log.NewWithOptions(os.Stderr, opts)

	return &Session{
		Console:   console,
		path:      path,
		file:      f,
		verbosity: verbosity,
		discard:   discard,
		tail:      tail,
	}, nil
}

// Path returns the log file location.
func (s *Session) Path() string { return s.path }

// Close flushes and closes the log file.
func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Writer returns the sink for subprocess output. Every line goes to the log
// file; echoing to stdout honors the verbosity level and --discard shaping.
// Close emits a final unterminated line once the process has exited.
func (s *Session) Writer() io.WriteCloser {
	return &lineWriter{s: s}
}

// Tail returns the last lines of subprocess output, bounded by the --tail
// setting, for printing when a stage fails.
func (s *Session) Tail() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ring))
	copy(out, s.ring)
	return out
}

func (s *Session) writeLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		fmt.Fprintln(s.file, line)
	}
	if s.tail > 0 {
		s.ring = append(s.ring, line)
		if len(s.ring) > s.tail {
			s.ring = s.ring[len(s.ring)-s.tail:]
		}
	}

	s.lineNo++
	if s.verbosity == Silent {
		return
	}
	if s.discard > 1 && s.lineNo%s.discard != 0 {
		return
	}
	fmt.Fprintln(os.Stdout, line)
}

// lineWriter splits subprocess output into lines, carrying partial lines
// across writes.
type lineWriter struct {
	s   *Session
	buf bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line: put it back and wait for more.
			w.buf.WriteString(line)
			break
		}
		w.s.writeLine(trimEOL(line))
	}
	return len(p), nil
}

// Close flushes a trailing line that arrived without a newline. Tools often
// end their fatal diagnostic that way.
func (w *lineWriter) Close() error {
	if w.buf.Len() > 0 {
		w.s.writeLine(trimEOL(w.buf.String()))
		w.buf.Reset()
	}
	return nil
}

func trimEOL(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
