package syntax

import (
	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// Attributes written before a function
type Attributes struct {
	Pure     bool
	ReadOnly bool
	Nothrow  bool
	Operator bool
}

// Parameter of a function. Parameters borrow their argument unless
// they are declared to capture it.
type Parameter struct {
	Name    string
	Type    TypeNode // nil for a receiver of the enclosing class
	Capture bool
	source.Location
}

func (p *Parameter) INode()                {} // Implements Node interface
func (p *Parameter) Loc() *source.Location { return &p.Location }

// FunctionDeclaration declares a top-level or member function
type FunctionDeclaration struct {
	Name           string
	Attributes     Attributes
	TypeParameters []*TypeParameter
	Receiver       *Parameter // nil without receiver
	Parameters     []*Parameter
	ReturnType     TypeNode   // nil to infer from the body
	Body           *CodeChunk // nil for abstract members
	source.Location
}

func (f *FunctionDeclaration) INode()                {} // Implements Node interface
func (f *FunctionDeclaration) Decl()                 {} // Decl is a marker interface for declarations
func (f *FunctionDeclaration) Loc() *source.Location { return &f.Location }

// FieldDeclaration declares a member variable of a class
type FieldDeclaration struct {
	Name         string
	Type         TypeNode
	Initializer  Expression // nil when set by the constructor
	Reassignable bool
	source.Location
}

func (f *FieldDeclaration) INode()                {} // Implements Node interface
func (f *FieldDeclaration) Loc() *source.Location { return &f.Location }

// ClassDeclaration declares a class or an interface
type ClassDeclaration struct {
	Name           string
	Interface      bool
	TypeParameters []*TypeParameter
	Supertypes     []*NamedType
	Fields         []*FieldDeclaration
	Members        []*FunctionDeclaration
	source.Location
}

func (c *ClassDeclaration) INode()                {} // Implements Node interface
func (c *ClassDeclaration) Decl()                 {} // Decl is a marker interface for declarations
func (c *ClassDeclaration) Loc() *source.Location { return &c.Location }
