package colors

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Plain marks a writer that takes no escape sequences, e.g. a trace file.
// Colored writes to it come out uncolored.
type Plain struct {
	io.Writer
}

// Paint wraps s in c and a reset.
func (c COLOR) Paint(s string) string {
	if s == "" {
		return s
	}
	return string(c) + s + string(RESET)
}

func (c COLOR) write(w io.Writer, s string) {
	if _, plain := w.(Plain); !plain {
		s = c.Paint(s)
	}
	io.WriteString(w, s)
}

func (c COLOR) Fprint(w io.Writer, args ...any) {
	c.write(w, fmt.Sprint(args...))
}

func (c COLOR) Fprintf(w io.Writer, format string, args ...any) {
	c.write(w, fmt.Sprintf(format, args...))
}

// Fprintln resets the color before the line break.
func (c COLOR) Fprintln(w io.Writer, args ...any) {
	c.write(w, strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
	io.WriteString(w, "\n")
}

var escape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// StripANSI removes color escape sequences from s.
func StripANSI(s string) string {
	return escape.ReplaceAllString(s, "")
}
