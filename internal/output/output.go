// Package output funnels all user-facing CLI text through one writer so
// commands render status lines the same way.
package output

import (
	"fmt"
	"io"
)

// The icons the status helpers prefix their lines with. The warning icon
// carries a trailing space; the emoji renders narrow in most terminals.
const (
	iconSuccess = "✅"
	iconWarning = "⚠️ "
	iconError   = "❌"
)

// Writer renders CLI output. Write errors are ignored throughout; there
// is nothing sensible to do when stdout is gone.
type Writer struct {
	out io.Writer
}

// New creates a Writer on top of out.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Plain prints a line exactly as given, no icon, no indent. Result and
// diagnostic lines with a fixed format go through here.
func (w *Writer) Plain(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// Plainf prints a formatted line exactly as given.
func (w *Writer) Plainf(format string, args ...any) {
	w.Plain(fmt.Sprintf(format, args...))
}

// Print prints without a trailing newline. Used for prompts that expect
// the answer on the same line.
func (w *Writer) Print(msg string) {
	_, _ = fmt.Fprint(w.out, msg)
}

// Status prints msg behind an icon. An empty icon indents the line so it
// aligns under an iconed one.
func (w *Writer) Status(icon, msg string) {
	prefix := "   "
	if icon != "" {
		prefix = icon + " "
	}
	_, _ = fmt.Fprintf(w.out, "%s%s\n", prefix, msg)
}

// Statusf is Status with a formatted message.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints msg behind a checkmark.
func (w *Writer) Success(msg string) {
	w.Status(iconSuccess, msg)
}

// Successf is Success with a formatted message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints msg behind the warning icon.
func (w *Writer) Warning(msg string) {
	w.Status(iconWarning, msg)
}

// Warningf is Warning with a formatted message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints msg behind the error icon.
func (w *Writer) Error(msg string) {
	w.Status(iconError, msg)
}

// Errorf is Error with a formatted message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline emits a blank line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
