package rhi

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Log receives human-readable progress, warning and error text.
// Degraded behavior such as missing debug label support, link failures and
// owner mismatches is reported here and never returned as an error.
//
// Implementations must be safe for concurrent use.
type Log interface {
	// Print appends formatted text to the current line.
	Print(format string, args ...any)
	// PrintLine completes the current line with formatted text.
	PrintLine(format string, args ...any)
	// PrintProgress reports that current of total steps are done.
	PrintProgress(current, total int)
}

// SlogLog is a Log writing complete lines to a slog.Logger.
// Numbers are formatted for the configured language.
type SlogLog struct {
	logger  *slog.Logger
	printer *message.Printer

	mu      sync.Mutex
	pending strings.Builder
}

// NewSlogLog returns a Log writing to l in the given language.
// A nil l writes to the package logger at the time of each call.
func NewSlogLog(l *slog.Logger, tag language.Tag) *SlogLog {
	return &SlogLog{logger: l, printer: message.NewPrinter(tag)}
}

// DefaultLog returns a SlogLog using the package logger and English
// number formatting.
func DefaultLog() *SlogLog {
	return NewSlogLog(nil, language.English)
}

func (l *SlogLog) out() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return Logger()
}

// Print implements Log.
func (l *SlogLog) Print(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(l.printer.Sprintf(format, args...))
}

// PrintLine implements Log.
func (l *SlogLog) PrintLine(format string, args ...any) {
	l.mu.Lock()
	l.pending.WriteString(l.printer.Sprintf(format, args...))
	line := l.pending.String()
	l.pending.Reset()
	l.mu.Unlock()
	l.out().Info(line)
}

// PrintProgress implements Log.
func (l *SlogLog) PrintProgress(current, total int) {
	pct := 100.0
	if total > 0 {
		pct = float64(current) * 100 / float64(total)
	}
	l.out().Info(l.printer.Sprintf("progress %d/%d (%.1f%%)", current, total, pct),
		"current", current, "total", total)
}

// discardLog drops everything.
type discardLog struct{}

func (discardLog) Print(string, ...any)     {}
func (discardLog) PrintLine(string, ...any) {}
func (discardLog) PrintProgress(int, int)   {}

// DiscardLog is a Log that drops all output.
var DiscardLog Log = discardLog{}

// BufferLog collects lines in memory. It is useful in tests and tools
// that show the log after a run.
type BufferLog struct {
	mu       sync.Mutex
	pending  strings.Builder
	lines    []string
	progress [2]int
}

// Print implements Log.
func (b *BufferLog) Print(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(&b.pending, format, args...)
}

// PrintLine implements Log.
func (b *BufferLog) PrintLine(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(&b.pending, format, args...)
	b.lines = append(b.lines, b.pending.String())
	b.pending.Reset()
}

// PrintProgress implements Log.
func (b *BufferLog) PrintProgress(current, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.progress = [2]int{current, total}
}

// Lines returns a copy of the completed lines.
func (b *BufferLog) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Progress returns the last reported progress.
func (b *BufferLog) Progress() (current, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress[0], b.progress[1]
}

// Contains reports whether any completed line contains substr.
func (b *BufferLog) Contains(substr string) bool {
	for _, l := range b.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
