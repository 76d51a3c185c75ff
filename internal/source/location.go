package source

import (
	"fmt"
	"strings"
)

// Location represents a span of source code with start and end positions
type Location struct {
	Start    *Position
	End      *Position
	Filename *string
}

// NewLocation creates a new Location with the given start and end positions
func NewLocation(filename *string, start, end *Position) *Location {
	return &Location{
		Filename: filename,
		Start:    start,
		End:      end,
	}
}

// Span is a shorthand for a location given by plain line/column numbers.
func Span(filename string, line, col, endLine, endCol int) *Location {
	return NewLocation(&filename, &Position{Line: line, Column: col}, &Position{Line: endLine, Column: endCol})
}

// Synthetic returns a location for compiler-generated code. It has a file name but no positions.
func Synthetic(what string) *Location {
	name := "<" + what + ">"
	return &Location{Filename: &name}
}

// IsSynthetic reports whether l carries no source positions.
func (l *Location) IsSynthetic() bool {
	return l == nil || l.Start == nil || l.End == nil
}

// File returns the file name or an empty string.
func (l *Location) File() string {
	if l == nil || l.Filename == nil {
		return ""
	}
	return *l.Filename
}

// Contains checks if the given position is within this location
func (l *Location) Contains(pos *Position) bool {
	if l.IsSynthetic() {
		return false
	}
	return l.Start.Compare(pos) <= 0 && l.End.Compare(pos) >= 0
}

// Encloses reports whether other lies completely inside l (same file).
func (l *Location) Encloses(other *Location) bool {
	if l.IsSynthetic() || other.IsSynthetic() || l.File() != other.File() {
		return false
	}
	return l.Start.Compare(other.Start) <= 0 && l.End.Compare(other.End) >= 0
}

// Through returns the span starting at l and ending at other.
func (l *Location) Through(other *Location) *Location {
	if l.IsSynthetic() {
		return other
	}
	if other.IsSynthetic() {
		return l
	}
	return NewLocation(l.Filename, l.Start, other.End)
}

func (l *Location) String() string {
	if l.IsSynthetic() {
		if name := l.File(); name != "" {
			return name
		}
		return "location(unknown)"
	}
	return fmt.Sprintf("%s:%d:%d", l.File(), l.Start.Line, l.Start.Column)
}

// Text extracts the text covered by l from the given file contents.
// Returns empty string if the location does not fit the text.
func (l *Location) Text(content string) string {
	if l.IsSynthetic() {
		return ""
	}
	lines := Lines(content)
	lineStart, lineEnd := l.Start.Line, l.End.Line
	if lineStart < 1 || lineEnd < lineStart || lineEnd > len(lines) {
		return ""
	}
	if lineStart == lineEnd {
		line := lines[lineStart-1]
		if l.Start.Column < 1 || l.End.Column > len(line)+1 || l.Start.Column > l.End.Column {
			return ""
		}
		return line[l.Start.Column-1 : l.End.Column-1]
	}

	var sb strings.Builder
	for n := lineStart; n <= lineEnd; n++ {
		line := lines[n-1]
		switch n {
		case lineStart:
			if l.Start.Column >= 1 && l.Start.Column <= len(line)+1 {
				sb.WriteString(line[l.Start.Column-1:])
			}
		case lineEnd:
			sb.WriteByte('\n')
			if l.End.Column >= 1 && l.End.Column <= len(line)+1 {
				sb.WriteString(line[:l.End.Column-1])
			}
		default:
			sb.WriteByte('\n')
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// Lines splits file contents into lines without their terminators.
func Lines(content string) []string {
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
