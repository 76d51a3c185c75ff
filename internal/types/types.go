package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// Type is the semantic representation of a type reference.
//
// Design principles:
// - Types are immutable after creation
// - Type equality is structural
// - All types can be displayed as strings
type Type interface {
	// String returns a human-readable representation of the type
	String() string

	// Equals checks structural equality with another type
	Equals(other Type) bool

	IsNullable() bool
	Mutability() Mutability

	// WithMutability and WithNullability return modified copies
	WithMutability(m Mutability) Type
	WithNullability(nullable bool) Type

	// isType is a marker method to prevent external implementation
	isType()
}

type TYPE_NAME string

const (
	TYPE_ANY       TYPE_NAME = "Any"
	TYPE_NOTHING   TYPE_NAME = "Nothing"
	TYPE_UNIT      TYPE_NAME = "Unit"
	TYPE_BOOL      TYPE_NAME = "Bool"
	TYPE_S8        TYPE_NAME = "S8"
	TYPE_S16       TYPE_NAME = "S16"
	TYPE_S32       TYPE_NAME = "S32"
	TYPE_S64       TYPE_NAME = "S64"
	TYPE_U8        TYPE_NAME = "U8"
	TYPE_U16       TYPE_NAME = "U16"
	TYPE_U32       TYPE_NAME = "U32"
	TYPE_U64       TYPE_NAME = "U64"
	TYPE_F32       TYPE_NAME = "F32"
	TYPE_F64       TYPE_NAME = "F64"
	TYPE_STRING    TYPE_NAME = "String"
	TYPE_ARRAY     TYPE_NAME = "Array"
	TYPE_THROWABLE TYPE_NAME = "Throwable"
)

// Mutability of the object a reference points to.
type Mutability int

const (
	Mutable Mutability = iota
	ReadOnly
	Immutable
	// Exclusive references are the only reference to their object and
	// convert to any other mutability.
	Exclusive
)

func (m Mutability) String() string {
	switch m {
	case Mutable:
		return "mut"
	case ReadOnly:
		return "read"
	case Immutable:
		return "const"
	case Exclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// IsAssignableTo reports whether a reference with mutability m can be stored
// where target is required.
func (m Mutability) IsAssignableTo(target Mutability) bool {
	return m == target || m == Exclusive || target == ReadOnly
}

// Union is the weakest mutability both m and other convert to.
func (m Mutability) Union(other Mutability) Mutability {
	switch {
	case m == other:
		return m
	case m == Exclusive:
		return other
	case other == Exclusive:
		return m
	}
	return ReadOnly
}

// ParseMutability maps a source modifier to a mutability.
func ParseMutability(s string) (Mutability, bool) {
	switch s {
	case "mut", "mutable":
		return Mutable, true
	case "read", "readonly", "":
		return ReadOnly, true
	case "const", "immutable":
		return Immutable, true
	case "exclusive":
		return Exclusive, true
	}
	return ReadOnly, false
}

// Variance of a type parameter.
type Variance int

const (
	Invariant Variance = iota
	In
	Out
)

func (v Variance) String() string {
	switch v {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return ""
	}
}

// TypeParameter is a declared generic parameter. Identity is by pointer.
type TypeParameter struct {
	Name     string
	Variance Variance
	// Bound is the upper bound; nil means Any.
	Bound    Type
	Location *source.Location
}

func (p *TypeParameter) String() string {
	s := p.Name
	if p.Variance != Invariant {
		s = p.Variance.String() + " " + s
	}
	if p.Bound != nil {
		s += " : " + p.Bound.String()
	}
	return s
}

// BaseKind distinguishes the shapes of a base type.
type BaseKind int

const (
	Class BaseKind = iota
	Interface
	Top
	Bottom
)

// BaseType is a named type declaration: a class, an interface or one of
// the top/bottom types.
type BaseType struct {
	Name       string
	Kind       BaseKind
	Parameters []*TypeParameter
	// Supertypes may refer to Parameters through VariableRef.
	Supertypes []*RootRef
	// ValueType instances are copied and never reference counted; mutability
	// does not apply to them.
	ValueType bool
	// Min and Max are set for integer types.
	Min, Max *big.Int
	Floating bool
	Location *source.Location
}

func (b *BaseType) String() string {
	return b.Name
}

// IsInteger reports whether b is one of the integer types.
func (b *BaseType) IsInteger() bool {
	return b.Min != nil && b.Max != nil
}

// Holds reports whether v is in the range of the integer type b.
func (b *BaseType) Holds(v *big.Int) bool {
	return b.IsInteger() && b.Min.Cmp(v) <= 0 && b.Max.Cmp(v) >= 0
}

// IsSubtypeOf reports whether other is b or one of its transitive supertypes.
func (b *BaseType) IsSubtypeOf(other *BaseType) bool {
	if b == other || other.Kind == Top || b.Kind == Bottom {
		return true
	}
	visited := map[*BaseType]bool{}
	var walk func(*BaseType) bool
	walk = func(t *BaseType) bool {
		if visited[t] {
			return false
		}
		visited[t] = true
		for _, s := range t.Supertypes {
			if s.Base == other || walk(s.Base) {
				return true
			}
		}
		return false
	}
	return walk(b)
}

// Ref creates a reference to b with the given arguments and mutability.
func (b *BaseType) Ref(mut Mutability, args ...Type) *RootRef {
	return &RootRef{Base: b, Args: args, Mut: mut}
}

// SelfRef references b with its own parameters as arguments, as seen from inside
// the declaration of b.
func (b *BaseType) SelfRef(mut Mutability) *RootRef {
	args := make([]Type, len(b.Parameters))
	for i, p := range b.Parameters {
		args[i] = &VariableRef{Param: p}
	}
	return b.Ref(mut, args...)
}

// RootRef references a named base type with type arguments.
type RootRef struct {
	Base     *BaseType
	Args     []Type
	Mut      Mutability
	Nullable bool
}

func (r *RootRef) isType()                {}
func (r *RootRef) IsNullable() bool       { return r.Nullable }
func (r *RootRef) Mutability() Mutability { return r.Mut }

func (r *RootRef) WithMutability(m Mutability) Type {
	c := *r
	c.Mut = m
	return &c
}

func (r *RootRef) WithNullability(nullable bool) Type {
	c := *r
	c.Nullable = nullable
	return &c
}

func (r *RootRef) String() string {
	var sb strings.Builder
	if !r.Base.ValueType && r.Base.Kind != Top && r.Base.Kind != Bottom && r.Mut != ReadOnly {
		sb.WriteString(r.Mut.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Base.Name)
	if len(r.Args) > 0 {
		sb.WriteByte('<')
		for i, a := range r.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte('>')
	}
	if r.Nullable {
		sb.WriteByte('?')
	}
	return sb.String()
}

func (r *RootRef) Equals(other Type) bool {
	o, ok := other.(*RootRef)
	if !ok || r.Base != o.Base || r.Nullable != o.Nullable || len(r.Args) != len(o.Args) {
		return false
	}
	if !r.Base.ValueType && r.Mut != o.Mut {
		return false
	}
	for i := range r.Args {
		if !r.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

// VariableRef stands for a not yet known generic argument.
type VariableRef struct {
	Param    *TypeParameter
	Nullable bool
}

func (v *VariableRef) isType()                {}
func (v *VariableRef) IsNullable() bool       { return v.Nullable }
func (v *VariableRef) Mutability() Mutability { return ReadOnly }

func (v *VariableRef) WithMutability(Mutability) Type { return v }

func (v *VariableRef) WithNullability(nullable bool) Type {
	return &VariableRef{Param: v.Param, Nullable: nullable}
}

func (v *VariableRef) String() string {
	if v.Nullable {
		return v.Param.Name + "?"
	}
	return v.Param.Name
}

func (v *VariableRef) Equals(other Type) bool {
	o, ok := other.(*VariableRef)
	return ok && o.Param == v.Param && o.Nullable == v.Nullable
}

// UpperBound is the declared bound of the parameter, or nil for Any.
func (v *VariableRef) UpperBound() Type {
	if v.Param.Bound == nil {
		return nil
	}
	if v.Nullable {
		return v.Param.Bound.WithNullability(true)
	}
	return v.Param.Bound
}

// UntypedInteger is the provisional type of an integer literal whose width is
// decided by its context.
type UntypedInteger struct {
	Value *big.Int
}

func (u *UntypedInteger) isType()                        {}
func (u *UntypedInteger) IsNullable() bool               { return false }
func (u *UntypedInteger) Mutability() Mutability         { return Immutable }
func (u *UntypedInteger) WithMutability(Mutability) Type { return u }
func (u *UntypedInteger) WithNullability(bool) Type      { return u }

func (u *UntypedInteger) String() string {
	return fmt.Sprintf("integer literal %s", u.Value)
}

func (u *UntypedInteger) Equals(other Type) bool {
	o, ok := other.(*UntypedInteger)
	return ok && o.Value.Cmp(u.Value) == 0
}
