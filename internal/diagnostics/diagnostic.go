package diagnostics

import (
	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	// Consecutive is an error caused by an earlier error. It fails the
	// compilation but presentation layers may hide it.
	Consecutive
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Consecutive:
		return "consecutive error"
	default:
		return "unknown"
	}
}

// IsError reports whether the severity fails the compilation.
func (s Severity) IsError() bool {
	return s == Error || s == Consecutive
}

// Label represents a labeled section of code in a diagnostic
type Label struct {
	Location *source.Location
	Message  string
	Style    LabelStyle
}

type LabelStyle int

const (
	Primary   LabelStyle = iota // The main error location (uses ^^^)
	Secondary                   // Additional context (uses ---)
)

// Note represents additional information attached to a diagnostic
type Note struct {
	Message string
}

// Diagnostic represents a compiler diagnostic (error, warning, etc.)
type Diagnostic struct {
	Severity Severity
	Message  string
	Code     string // Error code like "T0001"
	FilePath string // Source file for this diagnostic
	Labels   []Label
	Notes    []Note
	Help     string // Suggestion for fixing the error
}

func newDiagnostic(severity Severity, message string) *Diagnostic {
	return &Diagnostic{
		Severity: severity,
		Message:  message,
		Labels:   make([]Label, 0),
		Notes:    make([]Note, 0),
	}
}

// NewError creates a new error diagnostic
func NewError(message string) *Diagnostic {
	return newDiagnostic(Error, message)
}

// NewWarning creates a new warning diagnostic
func NewWarning(message string) *Diagnostic {
	return newDiagnostic(Warning, message)
}

// NewInfo creates a new info diagnostic
func NewInfo(message string) *Diagnostic {
	return newDiagnostic(Info, message)
}

// NewConsecutive creates an error that follows from an earlier one
func NewConsecutive(message string) *Diagnostic {
	return newDiagnostic(Consecutive, message)
}

// WithCode sets the error code
func (d *Diagnostic) WithCode(code string) *Diagnostic {
	d.Code = code
	return d
}

// AsConsecutive demotes an error to a consecutive error.
func (d *Diagnostic) AsConsecutive() *Diagnostic {
	if d.Severity == Error {
		d.Severity = Consecutive
	}
	return d
}

// Location returns the location of the primary label, if any.
func (d *Diagnostic) Location() *source.Location {
	for _, label := range d.Labels {
		if label.Style == Primary {
			return label.Location
		}
	}
	return nil
}

// WithLabel adds a labeled location to the diagnostic
func (d *Diagnostic) WithLabel(loc *source.Location, message string, style LabelStyle) *Diagnostic {
	if d.FilePath == "" {
		d.FilePath = loc.File()
	}
	d.Labels = append(d.Labels, Label{
		Location: loc,
		Message:  message,
		Style:    style,
	})
	return d
}

func (d *Diagnostic) hasPrimary() bool {
	for _, label := range d.Labels {
		if label.Style == Primary {
			return true
		}
	}
	return false
}

// WithPrimaryLabel adds the primary labeled location. A diagnostic has at most one;
// later calls are ignored.
func (d *Diagnostic) WithPrimaryLabel(loc *source.Location, message string) *Diagnostic {
	if d.hasPrimary() {
		return d
	}
	if len(d.Labels) > 0 {
		d.Labels = append([]Label{{Location: loc, Message: message, Style: Primary}}, d.Labels...)
		d.FilePath = loc.File()
		return d
	}
	return d.WithLabel(loc, message, Primary)
}

// WithSecondaryLabel adds a secondary labeled location
// Primary label must exist before adding secondary labels
func (d *Diagnostic) WithSecondaryLabel(loc *source.Location, message string) *Diagnostic {
	if !d.hasPrimary() {
		panic("Cannot add secondary label without primary label. Call WithPrimaryLabel first.")
	}
	return d.WithLabel(loc, message, Secondary)
}

// WithNote adds a note to the diagnostic
func (d *Diagnostic) WithNote(message string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Message: message})
	return d
}

// WithHelp sets helpful suggestion for fixing the error
func (d *Diagnostic) WithHelp(help string) *Diagnostic {
	d.Help = help
	return d
}

func (d *Diagnostic) String() string {
	head := d.Severity.String()
	if d.Code != "" {
		head += "[" + d.Code + "]"
	}
	if loc := d.Location(); loc != nil {
		return head + ": " + d.Message + " (" + loc.String() + ")"
	}
	return head + ": " + d.Message
}
