package binding

import (
	"fmt"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/overload"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
)

// CompilationUnit is the bound form of one source file. Its declarations
// live in the module scope it was created with.
//
// Within each phase globals bind first, then classes, then functions, each
// group in source order. Types and functions are declared before anything
// resolves, so declarations may refer to each other regardless of order.
type CompilationUnit struct {
	nodeBase
	Path      string
	Globals   []*VariableDeclaration
	Classes   []*ClassDeclaration
	Functions []*FunctionDeclaration
	// declarations holds all of the above in source order
	declarations []Node
}

// New creates the bound tree of unit in the module scope. Nothing is bound
// until Bind or the phase functions run.
func New(unit *syntax.CompilationUnit, module *table.SymbolTable, opts Options) *CompilationUnit {
	b := newBinder(module.Catalog(), opts)
	u := &CompilationUnit{
		nodeBase: newNodeBase(b, module, unitLocation(unit)),
		Path:     unit.Path,
	}
	for _, decl := range unit.Declarations {
		switch d := decl.(type) {
		case *syntax.VariableDeclaration:
			g := newVariableDeclaration(b, module, d, true)
			u.Globals = append(u.Globals, g)
			u.declarations = append(u.declarations, g)
		case *syntax.ClassDeclaration:
			c := newClassDeclaration(b, module, d)
			u.Classes = append(u.Classes, c)
			u.declarations = append(u.declarations, c)
		case *syntax.FunctionDeclaration:
			f := newFunctionDeclaration(b, module, d, nil)
			u.Functions = append(u.Functions, f)
			u.declarations = append(u.declarations, f)
		default:
			panic(fmt.Sprintf("binding: unsupported declaration %T", decl))
		}
	}
	return u
}

func unitLocation(unit *syntax.CompilationUnit) *source.Location {
	if len(unit.Declarations) == 0 {
		return source.Synthetic(unit.Path)
	}
	first := unit.Declarations[0].Loc()
	return first.Through(unit.Declarations[len(unit.Declarations)-1].Loc())
}

// Bind runs all three phases and reports to sink.
func (u *CompilationUnit) Bind(sink diagnostics.Sink) {
	Resolve(u, sink)
	Infer(u, sink)
	Validate(u, sink)
}

func (u *CompilationUnit) Children() []Node { return u.declarations }

func (u *CompilationUnit) ThrowPrediction() effects.Prediction  { return effects.Never }
func (u *CompilationUnit) ReturnPrediction() effects.Prediction { return effects.Never }

// ordered lists the declarations in binding order.
func (u *CompilationUnit) ordered() []Node {
	nodes := make([]Node, 0, len(u.declarations))
	for _, g := range u.Globals {
		nodes = append(nodes, g)
	}
	for _, c := range u.Classes {
		nodes = append(nodes, c)
	}
	for _, f := range u.Functions {
		nodes = append(nodes, f)
	}
	return nodes
}

func (u *CompilationUnit) resolve(sink diagnostics.Sink) {
	u.binder.trace("[Phase 1] Resolving %s", u.Path)
	for _, c := range u.Classes {
		c.declare(sink)
	}
	functions := make([]*symbols.Function, len(u.Functions))
	for i, f := range u.Functions {
		u.scope.DeclareFunction(f.Function)
		functions[i] = f.Function
	}
	for _, c := range u.Classes {
		c.resolveHeader(sink)
	}

	for _, n := range u.ordered() {
		Resolve(n, sink)
	}

	overload.ValidateFunctions(functions, sink)
	for _, c := range u.Classes {
		c.validateMembers(sink)
	}
}

func (u *CompilationUnit) infer(sink diagnostics.Sink) {
	u.binder.trace("[Phase 2] Inferring %s", u.Path)
	u.binder.declarations = sink
	for _, n := range u.ordered() {
		Infer(n, sink)
	}
}

func (u *CompilationUnit) validate(sink diagnostics.Sink) {
	u.binder.trace("[Phase 3] Validating %s", u.Path)
	for _, n := range u.ordered() {
		Validate(n, sink)
	}
}
