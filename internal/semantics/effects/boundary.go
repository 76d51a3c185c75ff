package effects

import (
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// SideEffectBoundary is the code region purity is judged against: a function
// body or the initializer of a member variable.
type SideEffectBoundary struct {
	Function *symbols.Function
	// Field is set for member initializers.
	Field *symbols.Field
}

// FunctionBoundary is the boundary of a function body.
func FunctionBoundary(fn *symbols.Function) SideEffectBoundary {
	return SideEffectBoundary{Function: fn}
}

// MemberInitializerBoundary is the boundary of a field initializer.
func MemberInitializerBoundary(field *symbols.Field) SideEffectBoundary {
	return SideEffectBoundary{Field: field}
}

// Purity is the purity the boundary promises. Member initializers are pure.
func (b SideEffectBoundary) Purity() symbols.Purity {
	if b.Field != nil {
		return symbols.Pure
	}
	return b.Function.Purity
}

// IsOutside reports whether v is declared outside the boundary.
func (b SideEffectBoundary) IsOutside(v *symbols.Variable) bool {
	if b.Field != nil {
		return v.Owner == nil
	}
	return v.Owner != b.Function
}

func (b SideEffectBoundary) String() string {
	if b.Field != nil {
		return "initializer of member variable " + b.Field.Name
	}
	return b.Function.Purity.String() + " function " + b.Function.Name
}

// NothrowBoundaryKind tells which construct promised not to throw.
type NothrowBoundaryKind int

const (
	NothrowFunction NothrowBoundaryKind = iota
	NothrowConstructor
	NothrowDestructor
)

// NothrowBoundary is pushed down from a nothrow declaration to every node
// inside it.
type NothrowBoundary struct {
	Kind NothrowBoundaryKind
	Name string
}

func (b NothrowBoundary) String() string {
	switch b.Kind {
	case NothrowConstructor:
		return "constructor of " + b.Name
	case NothrowDestructor:
		return "destructor of " + b.Name
	default:
		return "nothrow function " + b.Name
	}
}

// ViolationKind separates reading from writing outside state.
type ViolationKind int

const (
	ReadViolation ViolationKind = iota
	WriteViolation
)

func (k ViolationKind) String() string {
	if k == WriteViolation {
		return "write"
	}
	return "read"
}

// Violation is one access to state outside a SideEffectBoundary.
type Violation struct {
	Kind     ViolationKind
	Location *source.Location
	// Variable is set for direct variable access.
	Variable *symbols.Variable
	// Function is set for invocations of a less pure function.
	Function *symbols.Function
}

// Describe renders the accessed state for messages.
func (v Violation) Describe() string {
	switch {
	case v.Variable != nil:
		return "variable " + v.Variable.Name
	case v.Function != nil:
		return v.Function.Purity.String() + " function " + v.Function.Name
	}
	return "state"
}

// InvocationViolations is what invoking callee at loc does to outside state:
// an impure function reads and writes, a readonly function only reads.
func InvocationViolations(callee *symbols.Function, loc *source.Location) []Violation {
	switch callee.Purity {
	case symbols.Impure:
		return []Violation{
			{Kind: ReadViolation, Location: loc, Function: callee},
			{Kind: WriteViolation, Location: loc, Function: callee},
		}
	case symbols.ReadOnly:
		return []Violation{{Kind: ReadViolation, Location: loc, Function: callee}}
	}
	return nil
}

// Filter drops the violations the boundary permits: impure boundaries permit
// everything, readonly boundaries permit reads.
func Filter(boundary SideEffectBoundary, violations []Violation) []Violation {
	var result []Violation
	for _, v := range violations {
		switch boundary.Purity() {
		case symbols.Impure:
			continue
		case symbols.ReadOnly:
			if v.Kind == ReadViolation {
				continue
			}
		}
		result = append(result, v)
	}
	return result
}
