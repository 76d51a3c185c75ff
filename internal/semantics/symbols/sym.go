package symbols

import (
	"strings"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// SymbolKind categorizes symbols
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolParameter
	SymbolFunction
	SymbolType
)

func (sk SymbolKind) String() string {
	switch sk {
	case SymbolVariable:
		return "variable"
	case SymbolParameter:
		return "parameter"
	case SymbolFunction:
		return "function"
	case SymbolType:
		return "type"
	default:
		return "unknown"
	}
}

// Ownership says whether a variable owns its value or only borrows it
// from the caller.
type Ownership int

const (
	Owned Ownership = iota
	Borrowed
)

func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}

// Variable is a local, global or parameter.
type Variable struct {
	Name string
	Kind SymbolKind
	// Type is nil until declared or inferred; nil after an error.
	Type         types.Type
	Reassignable bool
	Ownership    Ownership
	// Owner is the function declaring the variable, nil for globals.
	Owner    *Function
	Location *source.Location
}

func (v *Variable) String() string {
	if v.Type == nil {
		return v.Name
	}
	return v.Name + ": " + v.Type.String()
}

// Purity of a function body.
type Purity int

const (
	Impure Purity = iota
	ReadOnly
	Pure
)

func (p Purity) String() string {
	switch p {
	case Pure:
		return "pure"
	case ReadOnly:
		return "readonly"
	default:
		return "impure"
	}
}

// ReturnTypeInferrer computes the return type of a function declared without one.
type ReturnTypeInferrer interface {
	InferReturnType(sink diagnostics.Sink) types.Type
}

// Function is an overload candidate: a top-level function, a member function
// or a constructor.
type Function struct {
	Name           string
	TypeParameters []*types.TypeParameter
	Receiver       *Variable
	Parameters     []*Variable
	// ReturnType is nil when it has to be inferred from the body.
	ReturnType types.Type
	Purity     Purity
	Nothrow    bool
	Operator   bool
	Virtual    bool
	// DeclaringType is set for member functions and constructors.
	DeclaringType *TypeSymbol
	Constructor   bool
	Intrinsic     bool
	Location      *source.Location
	Inferrer      ReturnTypeInferrer
}

// Arity counts parameters including the receiver.
func (f *Function) Arity() int {
	if f.Receiver != nil {
		return len(f.Parameters) + 1
	}
	return len(f.Parameters)
}

// AllParameters returns the receiver, if any, followed by the parameters.
func (f *Function) AllParameters() []*Variable {
	if f.Receiver == nil {
		return f.Parameters
	}
	return append([]*Variable{f.Receiver}, f.Parameters...)
}

// InferenceVariables are the type parameters a call has to solve: those of the
// declaring type followed by the function's own.
func (f *Function) InferenceVariables() []*types.TypeParameter {
	if f.DeclaringType == nil || len(f.DeclaringType.Base.Parameters) == 0 {
		return f.TypeParameters
	}
	vars := make([]*types.TypeParameter, 0, len(f.DeclaringType.Base.Parameters)+len(f.TypeParameters))
	vars = append(vars, f.DeclaringType.Base.Parameters...)
	return append(vars, f.TypeParameters...)
}

// ResolvedReturnType returns the declared return type or infers it.
func (f *Function) ResolvedReturnType(sink diagnostics.Sink) types.Type {
	if f.ReturnType != nil || f.Inferrer == nil {
		return f.ReturnType
	}
	return f.Inferrer.InferReturnType(sink)
}

func (f *Function) String() string {
	var sb strings.Builder
	if f.Operator {
		sb.WriteString("operator ")
	}
	sb.WriteString("fn ")
	if f.DeclaringType != nil {
		sb.WriteString(f.DeclaringType.Base.Name)
		sb.WriteString("::")
	}
	sb.WriteString(f.Name)
	if len(f.TypeParameters) > 0 {
		sb.WriteByte('<')
		for i, p := range f.TypeParameters {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteByte('>')
	}
	sb.WriteByte('(')
	for i, p := range f.AllParameters() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	if f.ReturnType != nil {
		sb.WriteString(" -> ")
		sb.WriteString(f.ReturnType.String())
	}
	return sb.String()
}

// Field of a class.
type Field struct {
	Name           string
	Type           types.Type
	Reassignable   bool
	HasInitializer bool
	Location       *source.Location
}

// TypeSymbol is a declared class or interface with its members.
type TypeSymbol struct {
	Base         *types.BaseType
	Fields       []*Field
	Members      []*Function
	Constructors []*Function
	Location     *source.Location
}

// Field finds a field by name.
func (t *TypeSymbol) Field(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// MembersNamed lists the member functions declared directly on t.
func (t *TypeSymbol) MembersNamed(name string) []*Function {
	var result []*Function
	for _, m := range t.Members {
		if m.Name == name {
			result = append(result, m)
		}
	}
	return result
}

// AddMember declares a member function and links it to t.
func (t *TypeSymbol) AddMember(f *Function) {
	f.DeclaringType = t
	t.Members = append(t.Members, f)
}
