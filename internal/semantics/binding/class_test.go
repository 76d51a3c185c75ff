package binding

import (
	"testing"

	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

func TestConstructor(t *testing.T) {
	s := &src{}
	point := s.class("Point", fields(
		s.field("x", s.typ("S32"), nil),
		s.field("y", s.typ("S32"), s.num(0)),
		s.field("label", s.typ("String"), nil),
	))
	u, bag := bind(t, point,
		s.fn("origin", nil, nil, s.ret(s.call("Point", s.num(1), s.str("o")))),
	)
	expectCodes(t, bag)

	ts := u.Classes[0].Symbol
	if len(ts.Constructors) != 1 {
		t.Fatalf("Expected one constructor, got %d", len(ts.Constructors))
	}
	ctor := ts.Constructors[0]
	var names []string
	for _, p := range ctor.Parameters {
		names = append(names, p.Name)
	}
	if len(names) != 2 || names[0] != "x" || names[1] != "label" {
		t.Errorf("Expected constructor parameters [x label], got %v", names)
	}
	if ctor.ReturnType.Mutability() != types.Exclusive {
		t.Errorf("Expected the constructor to return an exclusive reference, got %v", ctor.ReturnType.Mutability())
	}
	if !ctor.Nothrow {
		t.Error("Expected the constructor to be nothrow")
	}

	rt, ok := function(t, u, "origin").Function.ReturnType.(*types.RootRef)
	if !ok || rt.Base != ts.Base {
		t.Errorf("Expected origin to return Point, got %v", rt)
	}
}

func TestInterfaceHasNoConstructor(t *testing.T) {
	s := &src{}
	u, bag := bind(t,
		s.iface("Shape", s.abstract("area", nil, s.typ("S32"))),
		s.fn("main", nil, nil, s.do(s.call("Shape"))),
	)
	if len(u.Classes[0].Symbol.Constructors) != 0 {
		t.Error("Expected an interface without constructor")
	}
	if !bag.HasErrors() {
		t.Error("Expected constructing an interface to fail")
	}
}

func TestSupertypes(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"class as supertype",
			func(s *src) []syntax.Decl {
				b := s.class("B", nil)
				b.Supertypes = []*syntax.NamedType{s.typ("A")}
				return []syntax.Decl{s.class("A", nil), b}
			},
			[]string{"T0001"},
		},
		{
			"interface as supertype",
			func(s *src) []syntax.Decl {
				b := s.class("B", nil)
				b.Supertypes = []*syntax.NamedType{s.typ("A")}
				return []syntax.Decl{s.iface("A"), b}
			},
			nil,
		},
		{
			"class assignable to its interface",
			func(s *src) []syntax.Decl {
				b := s.class("B", nil)
				b.Supertypes = []*syntax.NamedType{s.typ("A")}
				return []syntax.Decl{
					s.iface("A"),
					b,
					s.fn("main", nil, nil, s.let("a", s.typ("A"), s.call("B"))),
				}
			},
			nil,
		},
		{
			"interface not assignable to class",
			func(s *src) []syntax.Decl {
				b := s.class("B", nil)
				b.Supertypes = []*syntax.NamedType{s.typ("A")}
				return []syntax.Decl{
					s.iface("A"),
					b,
					s.fn("main", params(s.param("a", s.mutTyp("const", "A"))), nil, s.let("b", s.typ("B"), s.id("a"))),
				}
			},
			[]string{"T0001"},
		},
	})
}

func TestDispatch(t *testing.T) {
	s := &src{}
	square := s.class("Square", nil, s.fn("area", nil, s.typ("S32"), s.ret(s.num(4))))
	square.Supertypes = []*syntax.NamedType{s.typ("Shape")}
	u, bag := bind(t,
		s.iface("Shape", s.abstract("area", nil, s.typ("S32"))),
		square,
		s.fn("measure", params(s.param("shape", s.typ("Shape"))), nil, s.ret(s.method(s.id("shape"), "area"))),
		s.fn("direct", params(s.param("sq", s.typ("Square"))), nil, s.ret(s.method(s.id("sq"), "area"))),
	)
	expectCodes(t, bag)

	if !u.Classes[1].Members[0].Function.Virtual {
		t.Error("Expected the overriding member to be virtual")
	}

	tests := []struct {
		function string
		want     Dispatch
	}{
		{"measure", DynamicDispatch},
		{"direct", StaticDispatch},
	}
	for _, tt := range tests {
		call := find[*InvocationExpression](function(t, u, tt.function))
		if call == nil {
			t.Fatalf("Expected an invocation in %s", tt.function)
		}
		if call.Dispatch != tt.want {
			t.Errorf("Expected %s dispatch in %s, got %s", tt.want, tt.function, call.Dispatch)
		}
		if call.Function() == nil || call.Function().Name != "area" {
			t.Errorf("Expected %s to invoke area", tt.function)
		}
	}
}

func TestMembers(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"write through readonly reference",
			func(s *src) []syntax.Decl {
				n := s.field("n", s.typ("S32"), nil)
				n.Reassignable = true
				return []syntax.Decl{
					s.class("Counter", fields(n)),
					s.fn("bump", params(s.param("c", s.typ("Counter"))), nil,
						s.assign(s.member(s.id("c"), "n"), s.num(1)),
					),
				}
			},
			[]string{"E0013"},
		},
		{
			"write through mutable reference",
			func(s *src) []syntax.Decl {
				n := s.field("n", s.typ("S32"), nil)
				n.Reassignable = true
				return []syntax.Decl{
					s.class("Counter", fields(n)),
					s.fn("bump", params(s.param("c", s.mutTyp("mut", "Counter"))), nil,
						s.assign(s.member(s.id("c"), "n"), s.num(1)),
					),
				}
			},
			nil,
		},
		{
			"write final field",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Counter", fields(s.field("n", s.typ("S32"), nil))),
					s.fn("bump", params(s.param("c", s.mutTyp("mut", "Counter"))), nil,
						s.assign(s.member(s.id("c"), "n"), s.num(1)),
					),
				}
			},
			[]string{"E0005"},
		},
		{
			"redeclared field",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.class("Point", fields(
					s.field("x", s.typ("S32"), nil),
					s.field("x", s.typ("S32"), nil),
				))}
			},
			[]string{"R0005"},
		},
		{
			"impure member initializer",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.fn("seed", nil, s.typ("S32"), s.ret(s.num(1))),
					s.class("Point", fields(s.field("x", s.typ("S32"), s.call("seed")))),
				}
			},
			[]string{"E0001", "E0002", "E0003"},
		},
		{
			"pure nothrow member initializer",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					nothrow(pure(s.fn("seed", nil, s.typ("S32"), s.ret(s.num(1))))),
					s.class("Point", fields(s.field("x", s.typ("S32"), s.call("seed")))),
				}
			},
			nil,
		},
		{
			"member function reads field of self",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Point", fields(s.field("x", s.typ("S32"), nil)),
						s.fn("getX", nil, nil, s.ret(s.member(s.id("self"), "x"))),
					),
				}
			},
			nil,
		},
	})
}

func TestMemberAccessType(t *testing.T) {
	s := &src{}
	u, bag := bind(t,
		s.class("Box", fields(s.field("inner", s.mutTyp("mut", "Inner"), nil))),
		s.class("Inner", nil),
		s.fn("peek", params(s.param("b", s.typ("Box"))), nil, s.ret(s.member(s.id("b"), "inner"))),
	)
	expectCodes(t, bag)

	access := find[*MemberAccessExpression](function(t, u, "peek"))
	if access == nil || access.Field == nil {
		t.Fatal("Expected a resolved member access")
	}
	if got := access.Type().Mutability(); got != types.ReadOnly {
		t.Errorf("Expected a readonly view of the field, got %v", got)
	}
}
