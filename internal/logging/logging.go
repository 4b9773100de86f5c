package logging

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Sink receives human-readable conversion events. The converter only ever
// talks to this interface; where the lines end up (terminal, log file, TUI)
// is the caller's business.
type Sink interface {
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ED573")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4757")).Bold(true)
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Tee writes styled lines to a terminal writer and timestamped, ANSI-free
// copies of the same lines to a log file.
type Tee struct {
	terminal io.Writer
	logFile  *os.File
}

// NewTee opens (appending) the log file at logPath. A nil terminal writer
// suppresses terminal output, which the TUI uses to keep the screen clean.
func NewTee(terminal io.Writer, logPath string) (*Tee, error) {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return &Tee{terminal: terminal, logFile: f}, nil
}

func (t *Tee) Close() error {
	return t.logFile.Close()
}

func (t *Tee) Infof(format string, args ...any)    { t.write(fmt.Sprintf(format, args...)) }
func (t *Tee) Successf(format string, args ...any) { t.write(successStyle.Render(fmt.Sprintf(format, args...))) }
func (t *Tee) Warnf(format string, args ...any)    { t.write(warnStyle.Render(fmt.Sprintf(format, args...))) }
func (t *Tee) Errorf(format string, args ...any)   { t.write(errorStyle.Render(fmt.Sprintf(format, args...))) }

func (t *Tee) write(line string) {
	if t.terminal != nil {
		fmt.Fprintln(t.terminal, line)
	}
	stamp := time.Now().Format("[2006-01-02 15:04:05.000000] ")
	fmt.Fprintln(t.logFile, stamp+StripANSI(line))
}

// StripANSI removes terminal color codes so log file lines stay greppable.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// Fanout duplicates events to several sinks, letting the TUI observe the
// same stream the tee logger records.
type Fanout []Sink

func (f Fanout) Infof(format string, args ...any) {
	for _, s := range f {
		s.Infof(format, args...)
	}
}

func (f Fanout) Successf(format string, args ...any) {
	for _, s := range f {
		s.Successf(format, args...)
	}
}

func (f Fanout) Warnf(format string, args ...any) {
	for _, s := range f {
		s.Warnf(format, args...)
	}
}

func (f Fanout) Errorf(format string, args ...any) {
	for _, s := range f {
		s.Errorf(format, args...)
	}
}
