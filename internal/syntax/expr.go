package syntax

import (
	"math/big"

	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// IntegerLiteral is a whole number; its width is decided by the context
type IntegerLiteral struct {
	Value *big.Int
	source.Location
}

func (i *IntegerLiteral) INode()                {} // Implements Node interface
func (i *IntegerLiteral) Expr()                 {} // Expr is a marker interface for all expressions
func (i *IntegerLiteral) Loc() *source.Location { return &i.Location }

// BooleanLiteral is true or false
type BooleanLiteral struct {
	Value bool
	source.Location
}

func (b *BooleanLiteral) INode()                {} // Implements Node interface
func (b *BooleanLiteral) Expr()                 {} // Expr is a marker interface for all expressions
func (b *BooleanLiteral) Loc() *source.Location { return &b.Location }

// StringLiteral is a quoted string
type StringLiteral struct {
	Value string
	source.Location
}

func (s *StringLiteral) INode()                {} // Implements Node interface
func (s *StringLiteral) Expr()                 {} // Expr is a marker interface for all expressions
func (s *StringLiteral) Loc() *source.Location { return &s.Location }

// NullLiteral is the absent value
type NullLiteral struct {
	source.Location
}

func (n *NullLiteral) INode()                {} // Implements Node interface
func (n *NullLiteral) Expr()                 {} // Expr is a marker interface for all expressions
func (n *NullLiteral) Loc() *source.Location { return &n.Location }

// Identifier names a variable or a type
type Identifier struct {
	Name string
	source.Location
}

func (i *Identifier) INode()                {} // Implements Node interface
func (i *Identifier) Expr()                 {} // Expr is a marker interface for all expressions
func (i *Identifier) Loc() *source.Location { return &i.Location }

// Invocation calls a function: name(args) or receiver.name(args)
type Invocation struct {
	Receiver Expression // nil for plain calls
	Name     string
	TypeArgs []TypeNode // nil when omitted
	Args     []Expression
	source.Location
}

func (i *Invocation) INode()                {} // Implements Node interface
func (i *Invocation) Expr()                 {} // Expr is a marker interface for all expressions
func (i *Invocation) Loc() *source.Location { return &i.Location }

// MemberAccess reads a field: object.member
type MemberAccess struct {
	Object Expression
	Member string
	source.Location
}

func (m *MemberAccess) INode()                {} // Implements Node interface
func (m *MemberAccess) Expr()                 {} // Expr is a marker interface for all expressions
func (m *MemberAccess) Loc() *source.Location { return &m.Location }

// Binary is an infix operation. Op is the operator as written, e.g. "+" or "&&".
type Binary struct {
	Left  Expression
	Op    string
	Right Expression
	source.Location
}

func (b *Binary) INode()                {} // Implements Node interface
func (b *Binary) Expr()                 {} // Expr is a marker interface for all expressions
func (b *Binary) Loc() *source.Location { return &b.Location }

// Unary is a prefix operation: "-" or "!"
type Unary struct {
	Op      string
	Operand Expression
	source.Location
}

func (u *Unary) INode()                {} // Implements Node interface
func (u *Unary) Expr()                 {} // Expr is a marker interface for all expressions
func (u *Unary) Loc() *source.Location { return &u.Location }

// Index reads an element: object[index]
type Index struct {
	Object Expression
	Index  Expression
	source.Location
}

func (i *Index) INode()                {} // Implements Node interface
func (i *Index) Expr()                 {} // Expr is a marker interface for all expressions
func (i *Index) Loc() *source.Location { return &i.Location }

// If is a conditional; it can be used as a value when both branches exist
type If struct {
	Condition Expression
	Then      *CodeChunk
	Else      *CodeChunk // nil without else branch
	source.Location
}

func (i *If) INode()                {} // Implements Node interface
func (i *If) Expr()                 {} // Expr is a marker interface for all expressions
func (i *If) Stmt()                 {} // If is also a statement
func (i *If) Loc() *source.Location { return &i.Location }
