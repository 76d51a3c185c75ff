package binding

import (
	"math/big"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// IntegerLiteral takes the integer type its context expects, the default
// integer type otherwise.
type IntegerLiteral struct {
	expression
	leaf
	Value *big.Int
}

func (l *IntegerLiteral) resolve(diagnostics.Sink) {}

func (l *IntegerLiteral) infer(sink diagnostics.Sink) {
	c := l.scope.Catalog()
	if ref, ok := l.expected.(*types.RootRef); ok && ref.Base.IsInteger() {
		if !ref.Base.Holds(l.Value) {
			sink.Add(diagnostics.IntegerOutOfRange(l.loc, l.Value.String(), ref.Base.Name))
		}
		l.typ = ref.Base.Ref(types.Immutable)
		return
	}
	base := c.IntegerFor(l.Value)
	if base == nil {
		sink.Add(diagnostics.IntegerOutOfRange(l.loc, l.Value.String(), c.DefaultInteger.Name))
		base = c.DefaultInteger
	}
	l.typ = base.Ref(types.Immutable)
}

func (l *IntegerLiteral) validate(diagnostics.Sink) {}

func (l *IntegerLiteral) provisionalType() types.Type {
	return &types.UntypedInteger{Value: l.Value}
}

func (l *IntegerLiteral) ResultReferenceCounted() bool { return false }

type BooleanLiteral struct {
	expression
	leaf
	Value bool
}

func (l *BooleanLiteral) resolve(diagnostics.Sink)     {}
func (l *BooleanLiteral) infer(diagnostics.Sink)       { l.typ = l.scope.Catalog().BoolRef() }
func (l *BooleanLiteral) validate(diagnostics.Sink)    {}
func (l *BooleanLiteral) ResultReferenceCounted() bool { return false }

type StringLiteral struct {
	expression
	leaf
	Value string
}

func (l *StringLiteral) resolve(diagnostics.Sink)  {}
func (l *StringLiteral) infer(diagnostics.Sink)    { l.typ = l.scope.Catalog().StringRef() }
func (l *StringLiteral) validate(diagnostics.Sink) {}

// ResultReferenceCounted is false: string constants are static.
func (l *StringLiteral) ResultReferenceCounted() bool { return false }

// NullLiteral has the nullable bottom type, assignable to every nullable type.
type NullLiteral struct {
	expression
	leaf
}

func (l *NullLiteral) resolve(diagnostics.Sink)     {}
func (l *NullLiteral) infer(diagnostics.Sink)       { l.typ = l.scope.Catalog().NullRef() }
func (l *NullLiteral) validate(diagnostics.Sink)    {}
func (l *NullLiteral) ResultReferenceCounted() bool { return false }
