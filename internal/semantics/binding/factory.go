package binding

import (
	"fmt"

	"github.com/emerge-lang/compiler-sub000/internal/semantics/effects"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

func bindExpression(b *Binder, scope *table.SymbolTable, syn syntax.Expression) Expression {
	switch n := syn.(type) {
	case *syntax.IntegerLiteral:
		return &IntegerLiteral{expression: newExpression(b, scope, n.Loc()), Value: n.Value}
	case *syntax.BooleanLiteral:
		return &BooleanLiteral{expression: newExpression(b, scope, n.Loc()), Value: n.Value}
	case *syntax.StringLiteral:
		return &StringLiteral{expression: newExpression(b, scope, n.Loc()), Value: n.Value}
	case *syntax.NullLiteral:
		return &NullLiteral{expression: newExpression(b, scope, n.Loc())}
	case *syntax.Identifier:
		return &IdentifierExpression{expression: newExpression(b, scope, n.Loc()), Name: n.Name}
	case *syntax.Invocation:
		inv := &InvocationExpression{
			expression: newExpression(b, scope, n.Loc()),
			Name:       n.Name,
			typeArgs:   n.TypeArgs,
		}
		if n.Receiver != nil {
			inv.Receiver = bindExpression(b, scope, n.Receiver)
		}
		for _, a := range n.Args {
			inv.Arguments = append(inv.Arguments, bindExpression(b, scope, a))
		}
		return inv
	case *syntax.MemberAccess:
		return &MemberAccessExpression{
			expression: newExpression(b, scope, n.Loc()),
			Object:     bindExpression(b, scope, n.Object),
			Member:     n.Member,
		}
	case *syntax.Binary:
		e := &BinaryExpression{
			expression: newExpression(b, scope, n.Loc()),
			Operator:   n.Op,
			Left:       bindExpression(b, scope, n.Left),
			Right:      bindExpression(b, scope, n.Right),
			Negated:    n.Op == "!=",
		}
		if name, native := OperatorFunction(n.Op); !native {
			e.Invocation = newOperatorInvocation(b, scope, n.Loc(), name, e.Left, e.Right)
		}
		return e
	case *syntax.Unary:
		name, ok := unaryOperators[n.Op]
		if !ok {
			name = n.Op
		}
		operand := bindExpression(b, scope, n.Operand)
		return &UnaryExpression{
			expression: newExpression(b, scope, n.Loc()),
			Operator:   n.Op,
			Operand:    operand,
			Invocation: newOperatorInvocation(b, scope, n.Loc(), name, operand),
		}
	case *syntax.Index:
		object := bindExpression(b, scope, n.Object)
		index := bindExpression(b, scope, n.Index)
		return &IndexExpression{
			expression: newExpression(b, scope, n.Loc()),
			Object:     object,
			Index:      index,
			Invocation: newOperatorInvocation(b, scope, n.Loc(), "get", object, index),
		}
	case *syntax.If:
		return newIfExpression(b, scope, n)
	}
	panic(fmt.Sprintf("binding: unsupported expression %T", syn))
}

func newIfExpression(b *Binder, scope *table.SymbolTable, n *syntax.If) *IfExpression {
	e := &IfExpression{
		expression: newExpression(b, scope, n.Loc()),
		Condition:  bindExpression(b, scope, n.Condition),
		Then:       newCodeChunk(b, scope.Derive(table.ScopeBranch), n.Then),
	}
	if n.Else == nil {
		e.out = scope.Join(e.Then.out, scope)
		return e
	}
	e.Else = newCodeChunk(b, scope.Derive(table.ScopeBranch), n.Else)
	e.out = scope.Join(e.Then.out, e.Else.out)
	return e
}

func newCodeChunk(b *Binder, scope *table.SymbolTable, syn *syntax.CodeChunk) *CodeChunk {
	c := &CodeChunk{nodeBase: newNodeBase(b, scope, syn.Loc())}
	current := scope
	for _, s := range syn.Statements {
		st := bindStatement(b, current, s)
		c.Statements = append(c.Statements, st)
		current = continuation(current, st)
	}
	c.out = current
	return c
}

// continuation is the scope the statement after st binds in. Declarations of
// nested chunks stay invisible; their effects carry over.
func continuation(scope *table.SymbolTable, st Statement) *table.SymbolTable {
	switch s := st.(type) {
	case *CodeChunk:
		return scope.Join(s.out)
	case *VariableDeclaration:
		return s.out
	case *IfExpression:
		return s.out
	case *WhileLoop:
		return s.out
	case *ExpressionStatement:
		if e, ok := s.Expression.(*IfExpression); ok {
			return e.out
		}
	}
	return scope
}

func bindStatement(b *Binder, scope *table.SymbolTable, syn syntax.Statement) Statement {
	switch n := syn.(type) {
	case *syntax.CodeChunk:
		return newCodeChunk(b, scope.Derive(table.ScopeBlock), n)
	case *syntax.VariableDeclaration:
		return newVariableDeclaration(b, scope, n, false)
	case *syntax.Assignment:
		return newAssignment(b, scope, n)
	case *syntax.ExpressionStatement:
		s := &ExpressionStatement{
			nodeBase:   newNodeBase(b, scope, n.Loc()),
			Expression: bindExpression(b, scope, n.Expression),
		}
		s.Expression.SetResultUsed(false)
		return s
	case *syntax.If:
		e := newIfExpression(b, scope, n)
		e.SetResultUsed(false)
		return e
	case *syntax.Return:
		s := &ReturnStatement{nodeBase: newNodeBase(b, scope, n.Loc())}
		if n.Value != nil {
			s.Value = bindExpression(b, scope, n.Value)
		}
		return s
	case *syntax.Throw:
		return &ThrowStatement{
			nodeBase: newNodeBase(b, scope, n.Loc()),
			Value:    bindExpression(b, scope, n.Value),
		}
	case *syntax.While:
		w := &WhileLoop{
			nodeBase:  newNodeBase(b, scope, n.Loc()),
			Condition: bindExpression(b, scope, n.Condition),
		}
		w.Body = newCodeChunk(b, scope.DeriveLoop(w), n.Body)
		w.out = scope.Join(scope, w.Body.out)
		return w
	case *syntax.Break:
		return &BreakStatement{nodeBase: newNodeBase(b, scope, n.Loc())}
	case *syntax.Continue:
		return &ContinueStatement{nodeBase: newNodeBase(b, scope, n.Loc())}
	}
	panic(fmt.Sprintf("binding: unsupported statement %T", syn))
}

func newVariableDeclaration(b *Binder, scope *table.SymbolTable, n *syntax.VariableDeclaration, global bool) *VariableDeclaration {
	d := &VariableDeclaration{
		nodeBase: newNodeBase(b, scope, n.Loc()),
		Variable: &symbols.Variable{
			Name:         n.Name,
			Kind:         symbols.SymbolVariable,
			Reassignable: n.Reassignable,
			Ownership:    symbols.Owned,
			Location:     n.Loc(),
		},
		typeNode: n.Type,
		out:      scope,
	}
	if !global {
		d.out = scope.Derive(table.ScopeSequence)
	}
	if n.Initializer != nil {
		d.Initializer = bindExpression(b, scope, n.Initializer)
	}
	return d
}

func newAssignment(b *Binder, scope *table.SymbolTable, n *syntax.Assignment) *AssignmentStatement {
	a := &AssignmentStatement{nodeBase: newNodeBase(b, scope, n.Loc())}
	switch t := n.Target.(type) {
	case *syntax.Identifier:
		ident := bindExpression(b, scope, t).(*IdentifierExpression)
		ident.SetUsage(effects.ValueUsage{Kind: effects.WriteTarget, Mutability: types.Mutable, Location: t.Loc()})
		a.Target.Variable = ident
		a.Value = bindExpression(b, scope, n.Value)
	case *syntax.MemberAccess:
		a.Target.Member = bindExpression(b, scope, t).(*MemberAccessExpression)
		a.Value = bindExpression(b, scope, n.Value)
	case *syntax.Index:
		object := bindExpression(b, scope, t.Object)
		index := bindExpression(b, scope, t.Index)
		a.Value = bindExpression(b, scope, n.Value)
		a.Target.Index = newOperatorInvocation(b, scope, t.Loc(), "set", object, index, a.Value)
	default:
		a.invalid = bindExpression(b, scope, t)
		a.Value = bindExpression(b, scope, n.Value)
	}
	return a
}
