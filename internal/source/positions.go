package source

// Position represents a specific location in the source code with line, column, and index information.
type Position struct {
	Line   int // Line number in the source code.
	Column int // Column number in the source code.
	Index  int // Byte offset in the source code.
}

// Compare orders positions by line, then column.
func (p *Position) Compare(other *Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Advance updates the Position by advancing it based on the bytes in the provided string.
// It increments the line number for newline bytes and the column number for other bytes.
func (p *Position) Advance(toSkip string) *Position {
	for _, char := range toSkip {
		if char == '\n' {
			p.Line++
			p.Column = 1
			p.Index++
			continue
		}
		p.Column++
		p.Index += len(string(char))
	}
	return p
}
