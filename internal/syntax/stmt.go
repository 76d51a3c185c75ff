package syntax

import (
	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// CodeChunk is a sequence of statements in braces
type CodeChunk struct {
	Statements []Statement
	source.Location
}

func (c *CodeChunk) INode()                {} // Implements Node interface
func (c *CodeChunk) Stmt()                 {} // Stmt is a marker interface for all statements
func (c *CodeChunk) Loc() *source.Location { return &c.Location }

// VariableDeclaration declares a local or, at top level, a global variable
type VariableDeclaration struct {
	Name         string
	Type         TypeNode   // nil to infer from the initializer
	Initializer  Expression // nil when assigned later
	Reassignable bool       // var instead of let
	source.Location
}

func (v *VariableDeclaration) INode()                {} // Implements Node interface
func (v *VariableDeclaration) Stmt()                 {} // Stmt is a marker interface for all statements
func (v *VariableDeclaration) Decl()                 {} // Globals are declarations
func (v *VariableDeclaration) Loc() *source.Location { return &v.Location }

// Assignment stores a value: target = value. The target is an Identifier,
// a MemberAccess or an Index.
type Assignment struct {
	Target Expression
	Value  Expression
	source.Location
}

func (a *Assignment) INode()                {} // Implements Node interface
func (a *Assignment) Stmt()                 {} // Stmt is a marker interface for all statements
func (a *Assignment) Loc() *source.Location { return &a.Location }

// ExpressionStatement evaluates an expression for its effects
type ExpressionStatement struct {
	Expression Expression
	source.Location
}

func (e *ExpressionStatement) INode()                {} // Implements Node interface
func (e *ExpressionStatement) Stmt()                 {} // Stmt is a marker interface for all statements
func (e *ExpressionStatement) Loc() *source.Location { return &e.Location }

// Return leaves the enclosing function
type Return struct {
	Value Expression // nil for Unit
	source.Location
}

func (r *Return) INode()                {} // Implements Node interface
func (r *Return) Stmt()                 {} // Stmt is a marker interface for all statements
func (r *Return) Loc() *source.Location { return &r.Location }

// Throw raises a throwable value
type Throw struct {
	Value Expression
	source.Location
}

func (t *Throw) INode()                {} // Implements Node interface
func (t *Throw) Stmt()                 {} // Stmt is a marker interface for all statements
func (t *Throw) Loc() *source.Location { return &t.Location }

// While repeats the body while the condition holds
type While struct {
	Condition Expression
	Body      *CodeChunk
	source.Location
}

func (w *While) INode()                {} // Implements Node interface
func (w *While) Stmt()                 {} // Stmt is a marker interface for all statements
func (w *While) Loc() *source.Location { return &w.Location }

// Break leaves the innermost loop
type Break struct {
	source.Location
}

func (b *Break) INode()                {} // Implements Node interface
func (b *Break) Stmt()                 {} // Stmt is a marker interface for all statements
func (b *Break) Loc() *source.Location { return &b.Location }

// Continue starts the next iteration of the innermost loop
type Continue struct {
	source.Location
}

func (c *Continue) INode()                {} // Implements Node interface
func (c *Continue) Stmt()                 {} // Stmt is a marker interface for all statements
func (c *Continue) Loc() *source.Location { return &c.Location }
