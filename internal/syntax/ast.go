// Package syntax holds the input of the binder: the immutable tree a parser
// produces for one compilation unit. Nodes carry source spans and no semantic
// information.
package syntax

import (
	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// Node is the base interface for all syntax nodes
type Node interface {
	INode()
	Loc() *source.Location
}

// Expression represents any node that produces a value
type Expression interface {
	Node
	Expr()
}

// Statement represents any node that performs an action
type Statement interface {
	Node
	Stmt()
}

// TypeNode represents a written type
type TypeNode interface {
	Node
	TypeExpr()
}

// Decl represents a top-level declaration
type Decl interface {
	Node
	Decl()
}

// NamedType is a written type reference: mutability, name, type arguments
// and an optional question mark.
type NamedType struct {
	Name string
	Args []TypeNode
	// Mutability is one of "", "mut", "read", "const", "exclusive".
	Mutability string
	Nullable   bool
	source.Location
}

func (n *NamedType) INode()                {} // Implements Node interface
func (n *NamedType) TypeExpr()             {} // Type nodes implement TypeExpr
func (n *NamedType) Loc() *source.Location { return &n.Location }

// TypeParameter declares a generic parameter of a class or function.
type TypeParameter struct {
	Name string
	// Variance is one of "", "in", "out".
	Variance string
	Bound    TypeNode // nil means Any
	source.Location
}

func (t *TypeParameter) INode()                {} // Implements Node interface
func (t *TypeParameter) Loc() *source.Location { return &t.Location }

// CompilationUnit is one source file
type CompilationUnit struct {
	Path         string
	Declarations []Decl
	source.Location
}

func (c *CompilationUnit) INode()                {} // Implements Node interface
func (c *CompilationUnit) Loc() *source.Location { return &c.Location }
