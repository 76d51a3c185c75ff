package diagnostics

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/emerge-lang/compiler-sub000/colors"
)

const (
	compileFailedMsg          = "\nCompilation failed with %d error(s)"
	andWarningMsg             = " and %d warning(s)"
	compileSuccessWithWarning = "\nCompilation succeeded with %d warning(s)\n"
)

// DiagnosticBag collects diagnostics of one compilation pass
type DiagnosticBag struct {
	diagnostics []*Diagnostic
	mu          sync.Mutex
	errorCount  int
	warnCount   int
	sources     map[string]string
}

// NewDiagnosticBag creates a new diagnostic bag
func NewDiagnosticBag() *DiagnosticBag {
	return &DiagnosticBag{
		diagnostics: make([]*Diagnostic, 0),
		sources:     make(map[string]string),
	}
}

// AddSourceContent registers the contents of a file for snippet rendering
func (db *DiagnosticBag) AddSourceContent(filepath, content string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sources[filepath] = content
}

// Add adds a diagnostic to the bag
func (db *DiagnosticBag) Add(diag *Diagnostic) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.diagnostics = append(db.diagnostics, diag)

	switch {
	case diag.Severity.IsError():
		db.errorCount++
	case diag.Severity == Warning:
		db.warnCount++
	}
}

// HasErrors returns true if there are any errors, consecutive ones included
func (db *DiagnosticBag) HasErrors() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.errorCount > 0
}

// ErrorCount returns the number of errors
func (db *DiagnosticBag) ErrorCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.errorCount
}

// WarningCount returns the number of warnings
func (db *DiagnosticBag) WarningCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.warnCount
}

// Diagnostics returns a copy of all diagnostics
func (db *DiagnosticBag) Diagnostics() []*Diagnostic {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := make([]*Diagnostic, len(db.diagnostics))
	copy(result, db.diagnostics)
	return result
}

// Primary returns all diagnostics except consecutive errors
func (db *DiagnosticBag) Primary() []*Diagnostic {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := make([]*Diagnostic, 0, len(db.diagnostics))
	for _, d := range db.diagnostics {
		if d.Severity != Consecutive {
			result = append(result, d)
		}
	}
	return result
}

// WithCode returns the diagnostics carrying the given code
func (db *DiagnosticBag) WithCode(code string) []*Diagnostic {
	db.mu.Lock()
	defer db.mu.Unlock()
	var result []*Diagnostic
	for _, d := range db.diagnostics {
		if d.Code == code {
			result = append(result, d)
		}
	}
	return result
}

// EmitAll renders all diagnostics and a summary to w
func (db *DiagnosticBag) EmitAll(w io.Writer, suppressConsecutive bool) {
	db.mu.Lock()
	emitter := NewEmitter(w)
	emitter.SuppressConsecutive = suppressConsecutive
	for name, content := range db.sources {
		emitter.AddSource(name, content)
	}
	diagnostics := make([]*Diagnostic, len(db.diagnostics))
	copy(diagnostics, db.diagnostics)
	db.mu.Unlock()

	for _, diag := range diagnostics {
		emitter.Emit(diag)
	}
	db.printSummary(w)
}

// EmitAllToString emits all diagnostics to a string with ANSI codes
func (db *DiagnosticBag) EmitAllToString(suppressConsecutive bool) string {
	var buf bytes.Buffer
	db.EmitAll(&buf, suppressConsecutive)
	return buf.String()
}

func (db *DiagnosticBag) printSummary(w io.Writer) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.errorCount > 0 {
		colors.RED.Fprintf(w, compileFailedMsg, db.errorCount)
		if db.warnCount > 0 {
			colors.RED.Fprintf(w, andWarningMsg, db.warnCount)
		}
		fmt.Fprintln(w)
	} else if db.warnCount > 0 {
		colors.ORANGE.Fprintf(w, compileSuccessWithWarning, db.warnCount)
	}
}

// Clear removes all diagnostics
func (db *DiagnosticBag) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.diagnostics = make([]*Diagnostic, 0)
	db.errorCount = 0
	db.warnCount = 0
}
