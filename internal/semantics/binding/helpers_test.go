package binding

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"

	"github.com/emerge-lang/compiler-sub000/internal/context_v2"
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
)

// src builds syntax trees. Every node gets its own line.
type src struct {
	line int
}

func (s *src) at() source.Location {
	s.line++
	return *source.Span("test.em", s.line, 1, s.line, 80)
}

func (s *src) num(v int64) *syntax.IntegerLiteral {
	return &syntax.IntegerLiteral{Value: big.NewInt(v), Location: s.at()}
}

func (s *src) boolean(v bool) *syntax.BooleanLiteral {
	return &syntax.BooleanLiteral{Value: v, Location: s.at()}
}

func (s *src) str(v string) *syntax.StringLiteral {
	return &syntax.StringLiteral{Value: v, Location: s.at()}
}

func (s *src) null() *syntax.NullLiteral {
	return &syntax.NullLiteral{Location: s.at()}
}

func (s *src) id(name string) *syntax.Identifier {
	return &syntax.Identifier{Name: name, Location: s.at()}
}

func (s *src) call(name string, args ...syntax.Expression) *syntax.Invocation {
	return &syntax.Invocation{Name: name, Args: args, Location: s.at()}
}

func (s *src) method(receiver syntax.Expression, name string, args ...syntax.Expression) *syntax.Invocation {
	return &syntax.Invocation{Receiver: receiver, Name: name, Args: args, Location: s.at()}
}

func (s *src) member(object syntax.Expression, name string) *syntax.MemberAccess {
	return &syntax.MemberAccess{Object: object, Member: name, Location: s.at()}
}

func (s *src) bin(left syntax.Expression, op string, right syntax.Expression) *syntax.Binary {
	return &syntax.Binary{Left: left, Op: op, Right: right, Location: s.at()}
}

func (s *src) unary(op string, operand syntax.Expression) *syntax.Unary {
	return &syntax.Unary{Op: op, Operand: operand, Location: s.at()}
}

func (s *src) index(object, idx syntax.Expression) *syntax.Index {
	return &syntax.Index{Object: object, Index: idx, Location: s.at()}
}

func (s *src) typ(name string, args ...syntax.TypeNode) *syntax.NamedType {
	return &syntax.NamedType{Name: name, Args: args, Location: s.at()}
}

func (s *src) mutTyp(mutability, name string, args ...syntax.TypeNode) *syntax.NamedType {
	t := s.typ(name, args...)
	t.Mutability = mutability
	return t
}

func (s *src) nullable(name string) *syntax.NamedType {
	t := s.typ(name)
	t.Nullable = true
	return t
}

// let declares a non-reassignable variable. t and init may be nil.
func (s *src) let(name string, t syntax.TypeNode, init syntax.Expression) *syntax.VariableDeclaration {
	return &syntax.VariableDeclaration{Name: name, Type: t, Initializer: init, Location: s.at()}
}

// vr declares a reassignable variable.
func (s *src) vr(name string, t syntax.TypeNode, init syntax.Expression) *syntax.VariableDeclaration {
	d := s.let(name, t, init)
	d.Reassignable = true
	return d
}

func (s *src) assign(target, value syntax.Expression) *syntax.Assignment {
	return &syntax.Assignment{Target: target, Value: value, Location: s.at()}
}

func (s *src) do(e syntax.Expression) *syntax.ExpressionStatement {
	return &syntax.ExpressionStatement{Expression: e, Location: s.at()}
}

func (s *src) ret(v syntax.Expression) *syntax.Return {
	return &syntax.Return{Value: v, Location: s.at()}
}

func (s *src) throw(v syntax.Expression) *syntax.Throw {
	return &syntax.Throw{Value: v, Location: s.at()}
}

func (s *src) while(cond syntax.Expression, body ...syntax.Statement) *syntax.While {
	return &syntax.While{Condition: cond, Body: s.chunk(body...), Location: s.at()}
}

func (s *src) brk() *syntax.Break     { return &syntax.Break{Location: s.at()} }
func (s *src) cont() *syntax.Continue { return &syntax.Continue{Location: s.at()} }

func (s *src) chunk(stmts ...syntax.Statement) *syntax.CodeChunk {
	return &syntax.CodeChunk{Statements: stmts, Location: s.at()}
}

// ifElse builds a conditional; els may be nil.
func (s *src) ifElse(cond syntax.Expression, then, els *syntax.CodeChunk) *syntax.If {
	return &syntax.If{Condition: cond, Then: then, Else: els, Location: s.at()}
}

func (s *src) param(name string, t syntax.TypeNode) *syntax.Parameter {
	return &syntax.Parameter{Name: name, Type: t, Location: s.at()}
}

func (s *src) capture(name string, t syntax.TypeNode) *syntax.Parameter {
	p := s.param(name, t)
	p.Capture = true
	return p
}

// fn declares a function with a body. ret may be nil to infer the return type.
func (s *src) fn(name string, params []*syntax.Parameter, ret syntax.TypeNode, body ...syntax.Statement) *syntax.FunctionDeclaration {
	return &syntax.FunctionDeclaration{
		Name:       name,
		Parameters: params,
		ReturnType: ret,
		Body:       s.chunk(body...),
		Location:   s.at(),
	}
}

// generic adds type parameters to f.
func (s *src) generic(f *syntax.FunctionDeclaration, names ...string) *syntax.FunctionDeclaration {
	for _, n := range names {
		f.TypeParameters = append(f.TypeParameters, &syntax.TypeParameter{Name: n, Location: s.at()})
	}
	return f
}

func (s *src) abstract(name string, params []*syntax.Parameter, ret syntax.TypeNode) *syntax.FunctionDeclaration {
	return &syntax.FunctionDeclaration{Name: name, Parameters: params, ReturnType: ret, Location: s.at()}
}

func (s *src) field(name string, t syntax.TypeNode, init syntax.Expression) *syntax.FieldDeclaration {
	return &syntax.FieldDeclaration{Name: name, Type: t, Initializer: init, Location: s.at()}
}

func (s *src) class(name string, fields []*syntax.FieldDeclaration, members ...*syntax.FunctionDeclaration) *syntax.ClassDeclaration {
	return &syntax.ClassDeclaration{Name: name, Fields: fields, Members: members, Location: s.at()}
}

func (s *src) iface(name string, members ...*syntax.FunctionDeclaration) *syntax.ClassDeclaration {
	return &syntax.ClassDeclaration{Name: name, Interface: true, Members: members, Location: s.at()}
}

func params(ps ...*syntax.Parameter) []*syntax.Parameter { return ps }

func fields(fs ...*syntax.FieldDeclaration) []*syntax.FieldDeclaration { return fs }

func newModuleScope(t *testing.T) *table.SymbolTable {
	t.Helper()
	ctx, err := context_v2.New(nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return ctx.NewModuleScope()
}

// bind binds decls as one unit through all phases.
func bind(t *testing.T, decls ...syntax.Decl) (*CompilationUnit, *diagnostics.DiagnosticBag) {
	t.Helper()
	unit := &syntax.CompilationUnit{Path: "test.em", Declarations: decls}
	bound := New(unit, newModuleScope(t), Options{})
	bag := diagnostics.NewDiagnosticBag()
	bound.Bind(bag)
	return bound, bag
}

func codes(bag *diagnostics.DiagnosticBag) []string {
	result := []string{}
	for _, d := range bag.Diagnostics() {
		result = append(result, d.Code)
	}
	return result
}

// expectCodes checks the codes of all reported diagnostics, in report order.
func expectCodes(t *testing.T, bag *diagnostics.DiagnosticBag, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	got := codes(bag)
	if !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "codes", want, got)
		t.Errorf("Expected diagnostics %v, got %v", want, describeAll(bag))
	}
}

func describeAll(bag *diagnostics.DiagnosticBag) []string {
	var result []string
	for _, d := range bag.Diagnostics() {
		result = append(result, d.String())
	}
	return result
}

// function finds a bound top-level function by name.
func function(t *testing.T, u *CompilationUnit, name string) *FunctionDeclaration {
	t.Helper()
	for _, f := range u.Functions {
		if f.Function.Name == name {
			return f
		}
	}
	t.Fatalf("Expected function %s", name)
	return nil
}

// find returns the first node below n of type T.
func find[T Node](n Node) T {
	var found T
	done := false
	Walk(n, func(c Node) bool {
		if done {
			return false
		}
		if v, ok := c.(T); ok {
			found, done = v, true
			return false
		}
		return true
	})
	return found
}
