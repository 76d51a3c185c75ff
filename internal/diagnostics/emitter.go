package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/emerge-lang/compiler-sub000/colors"
	"github.com/emerge-lang/compiler-sub000/internal/source"
)

const (
	STR_MULTIPLIER = "%*d | "
	LINE_POS       = "%s--> %s:%d:%d\n"
)

// Emitter handles the rendering and output of diagnostics
type Emitter struct {
	// SuppressConsecutive hides errors that follow from an earlier error.
	SuppressConsecutive bool

	writer              io.Writer
	sources             map[string][]string
	currentLineNumWidth int
}

// NewEmitter creates an emitter that writes to a specific writer
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{
		writer:  w,
		sources: make(map[string][]string),
	}
}

// AddSource makes the contents of a file available for snippets
func (e *Emitter) AddSource(filepath, content string) {
	e.sources[filepath] = source.Lines(content)
}

func (e *Emitter) line(filepath string, n int) (string, bool) {
	lines, ok := e.sources[filepath]
	if !ok || n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

func (e *Emitter) Emit(diag *Diagnostic) {
	if e.SuppressConsecutive && diag.Severity == Consecutive {
		return
	}
	e.currentLineNumWidth = lineNumWidth(diag)

	e.printHeader(diag)
	for _, label := range diag.Labels {
		e.printLabel(label, diag.Severity)
	}
	for _, note := range diag.Notes {
		e.printNote(note)
	}
	if diag.Help != "" {
		e.printHelp(diag.Help)
	}
	fmt.Fprintln(e.writer)
}

func lineNumWidth(diag *Diagnostic) int {
	maxLine := 0
	for _, label := range diag.Labels {
		if label.Location.IsSynthetic() {
			continue
		}
		if label.Location.End.Line > maxLine {
			maxLine = label.Location.End.Line
		}
	}
	if maxLine == 0 {
		return 1
	}
	return len(fmt.Sprintf("%d", maxLine))
}

func (e *Emitter) printHeader(diag *Diagnostic) {
	color := colors.BOLD_RED
	switch diag.Severity {
	case Warning:
		color = colors.BOLD_YELLOW
	case Info:
		color = colors.BOLD_CYAN
	case Consecutive:
		color = colors.RED
	}

	color.Fprint(e.writer, diag.Severity.String())
	if diag.Code != "" {
		fmt.Fprintf(e.writer, "[%s]", diag.Code)
	}
	fmt.Fprint(e.writer, ": ")
	color.Fprintln(e.writer, diag.Message)
}

func (e *Emitter) printLabel(label Label, severity Severity) {
	if label.Location.IsSynthetic() {
		if label.Message != "" {
			colors.BLUE.Fprintf(e.writer, "%s--> %s: %s\n", strings.Repeat(" ", e.currentLineNumWidth), label.Location, label.Message)
		}
		return
	}

	start, end := label.Location.Start, label.Location.End
	filepath := label.Location.File()
	width := e.currentLineNumWidth
	colors.BLUE.Fprintf(e.writer, LINE_POS, strings.Repeat(" ", width), filepath, start.Line, start.Column)

	sourceLine, ok := e.line(filepath, start.Line)
	if !ok {
		if label.Message != "" {
			fmt.Fprintf(e.writer, "%s = %s\n", strings.Repeat(" ", width), label.Message)
		}
		return
	}

	fmt.Fprint(e.writer, strings.Repeat(" ", width))
	colors.GREY.Fprintln(e.writer, " |")
	colors.GREY.Fprintf(e.writer, STR_MULTIPLIER, width, start.Line)
	fmt.Fprintln(e.writer, sourceLine)

	length := end.Column - start.Column
	if end.Line > start.Line {
		length = len(sourceLine) - start.Column + 1
	}
	if length <= 0 {
		length = 1
	}

	underlineColor := colors.BLUE
	underlineChar := "-"
	if label.Style == Primary {
		underlineColor = e.getSeverityColor(severity)
		underlineChar = "^"
	}

	fmt.Fprint(e.writer, strings.Repeat(" ", width))
	colors.GREY.Fprint(e.writer, " |")
	fmt.Fprint(e.writer, strings.Repeat(" ", start.Column-1))
	underlineColor.Fprint(e.writer, strings.Repeat(underlineChar, length))
	if label.Message != "" {
		underlineColor.Fprintf(e.writer, " %s", label.Message)
	}
	fmt.Fprintln(e.writer)
}

func (e *Emitter) printNote(note Note) {
	fmt.Fprint(e.writer, strings.Repeat(" ", e.currentLineNumWidth+1))
	colors.CYAN.Fprint(e.writer, "= note: ")
	fmt.Fprintln(e.writer, note.Message)
}

func (e *Emitter) printHelp(help string) {
	fmt.Fprint(e.writer, strings.Repeat(" ", e.currentLineNumWidth+1))
	colors.GREEN.Fprint(e.writer, "= help: ")
	fmt.Fprintln(e.writer, help)
}

func (e *Emitter) getSeverityColor(severity Severity) colors.COLOR {
	switch severity {
	case Warning:
		return colors.YELLOW
	case Info:
		return colors.BLUE
	default:
		return colors.RED
	}
}
