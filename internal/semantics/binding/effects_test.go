package binding

import (
	"testing"

	"github.com/emerge-lang/compiler-sub000/internal/syntax"
)

func pure(f *syntax.FunctionDeclaration) *syntax.FunctionDeclaration {
	f.Attributes.Pure = true
	return f
}

func readonly(f *syntax.FunctionDeclaration) *syntax.FunctionDeclaration {
	f.Attributes.ReadOnly = true
	return f
}

func nothrow(f *syntax.FunctionDeclaration) *syntax.FunctionDeclaration {
	f.Attributes.Nothrow = true
	return f
}

type program func(s *src) []syntax.Decl

func runPrograms(t *testing.T, tests []struct {
	name  string
	decls program
	want  []string
}) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := bind(t, tt.decls(&src{})...)
			expectCodes(t, bag, tt.want...)
		})
	}
}

func TestInitialization(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"reassign final variable",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.let("x", nil, s.num(5)),
					s.assign(s.id("x"), s.num(6)),
				)}
			},
			[]string{"E0005"},
		},
		{
			"reassign var",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.vr("x", nil, s.num(5)),
					s.assign(s.id("x"), s.num(6)),
				)}
			},
			nil,
		},
		{
			"deferred initialization",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.let("x", s.typ("S32"), nil),
					s.assign(s.id("x"), s.num(1)),
					s.ret(s.id("x")),
				)}
			},
			nil,
		},
		{
			"final variable initialized in a loop",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.let("x", s.typ("S32"), nil),
					s.while(s.boolean(true), s.assign(s.id("x"), s.num(1)), s.brk()),
				)}
			},
			[]string{"E0005"},
		},
		{
			"var initialized in a loop",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.vr("x", s.typ("S32"), nil),
					s.while(s.boolean(true), s.assign(s.id("x"), s.num(1)), s.brk()),
				)}
			},
			nil,
		},
		{
			"final variable declared and initialized inside a loop",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.while(s.boolean(true),
						s.let("x", s.typ("S32"), nil),
						s.assign(s.id("x"), s.num(1)),
						s.brk(),
					),
				)}
			},
			nil,
		},
		{
			"read before initialization",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.let("x", s.typ("S32"), nil),
					s.ret(s.id("x")),
				)}
			},
			[]string{"E0004"},
		},
		{
			"initialized in one branch only",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", params(s.param("flag", s.typ("Bool"))), nil,
					s.let("x", s.typ("S32"), nil),
					s.ifElse(s.id("flag"), s.chunk(s.assign(s.id("x"), s.num(1))), nil),
					s.ret(s.id("x")),
				)}
			},
			[]string{"E0004"},
		},
		{
			"initialized in both branches",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", params(s.param("flag", s.typ("Bool"))), nil,
					s.let("x", s.typ("S32"), nil),
					s.ifElse(s.id("flag"),
						s.chunk(s.assign(s.id("x"), s.num(1))),
						s.chunk(s.assign(s.id("x"), s.num(2))),
					),
					s.ret(s.id("x")),
				)}
			},
			nil,
		},
		{
			"initialized twice across branches",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", params(s.param("flag", s.typ("Bool"))), nil,
					s.let("x", s.typ("S32"), nil),
					s.ifElse(s.id("flag"), s.chunk(s.assign(s.id("x"), s.num(1))), nil),
					s.assign(s.id("x"), s.num(2)),
				)}
			},
			[]string{"E0005"},
		},
	})
}

func TestLifetimes(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"use after capture",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Foo", nil),
					s.fn("take", params(s.capture("x", s.typ("Foo"))), nil),
					s.fn("main", nil, nil,
						s.let("a", nil, s.call("Foo")),
						s.do(s.call("take", s.id("a"))),
						s.do(s.call("take", s.id("a"))),
					),
				}
			},
			[]string{"E0006"},
		},
		{
			"capture inside loop",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Foo", nil),
					s.fn("take", params(s.capture("x", s.typ("Foo"))), nil),
					s.fn("main", nil, nil,
						s.let("a", nil, s.call("Foo")),
						s.while(s.boolean(true), s.do(s.call("take", s.id("a")))),
					),
				}
			},
			[]string{"E0007"},
		},
		{
			"borrowing twice",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Foo", nil),
					s.fn("look", params(s.param("x", s.typ("Foo"))), nil),
					s.fn("main", nil, nil,
						s.let("a", nil, s.call("Foo")),
						s.do(s.call("look", s.id("a"))),
						s.do(s.call("look", s.id("a"))),
					),
				}
			},
			nil,
		},
		{
			"mutable and readonly borrow in one call",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Foo", nil),
					s.fn("swap", params(s.param("x", s.mutTyp("mut", "Foo")), s.param("y", s.typ("Foo"))), nil),
					s.fn("main", nil, nil,
						s.let("a", nil, s.call("Foo")),
						s.do(s.call("swap", s.id("a"), s.id("a"))),
					),
				}
			},
			[]string{"E0008"},
		},
		{
			"borrowed parameter captured",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Foo", nil),
					s.fn("keep", params(s.capture("x", s.typ("Foo"))), nil),
					s.fn("pass", params(s.param("y", s.typ("Foo"))), nil,
						s.do(s.call("keep", s.id("y"))),
					),
				}
			},
			[]string{"E0009"},
		},
		{
			"borrowed immutable parameter captured",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Foo", nil),
					s.fn("keep", params(s.capture("x", s.typ("Foo"))), nil),
					s.fn("pass", params(s.param("y", s.mutTyp("const", "Foo"))), nil,
						s.do(s.call("keep", s.id("y"))),
					),
				}
			},
			nil,
		},
	})
}

func TestNothrow(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"call of throwing function",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.fn("risky", nil, nil),
					nothrow(s.fn("safe", nil, nil, s.do(s.call("risky")))),
				}
			},
			[]string{"E0001"},
		},
		{
			"throw statement",
			func(s *src) []syntax.Decl {
				boom := s.class("Boom", nil)
				boom.Supertypes = []*syntax.NamedType{s.typ("Throwable")}
				return []syntax.Decl{
					boom,
					nothrow(s.fn("fail", nil, nil, s.throw(s.call("Boom")))),
				}
			},
			[]string{"E0001"},
		},
		{
			"division",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					nothrow(s.fn("half", params(s.param("a", s.typ("S32"))), nil,
						s.ret(s.bin(s.id("a"), "/", s.num(2))),
					)),
				}
			},
			[]string{"E0001"},
		},
		{
			"addition and construction",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Foo", nil),
					nothrow(s.fn("inc", params(s.param("a", s.typ("S32"))), nil,
						s.do(s.call("Foo")),
						s.ret(s.bin(s.id("a"), "+", s.num(1))),
					)),
				}
			},
			nil,
		},
		{
			"throwing a non-throwable",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("fail", nil, nil, s.throw(s.num(5)))}
			},
			[]string{"E0010"},
		},
		{
			"throwing a throwable",
			func(s *src) []syntax.Decl {
				boom := s.class("Boom", nil)
				boom.Supertypes = []*syntax.NamedType{s.typ("Throwable")}
				return []syntax.Decl{boom, s.fn("fail", nil, nil, s.throw(s.call("Boom")))}
			},
			nil,
		},
	})
}

func TestPurity(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"pure function reads global var",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.vr("counter", s.typ("S32"), s.num(0)),
					pure(s.fn("peek", nil, nil, s.ret(s.id("counter")))),
				}
			},
			[]string{"E0002"},
		},
		{
			"pure function reads global constant",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.let("limit", nil, s.num(10)),
					pure(s.fn("cap", nil, nil, s.ret(s.id("limit")))),
				}
			},
			nil,
		},
		{
			"readonly function reads global var",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.vr("counter", s.typ("S32"), s.num(0)),
					readonly(s.fn("peek", nil, nil, s.ret(s.id("counter")))),
				}
			},
			nil,
		},
		{
			"readonly function writes global",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.vr("counter", s.typ("S32"), s.num(0)),
					readonly(s.fn("reset", nil, nil, s.assign(s.id("counter"), s.num(0)))),
				}
			},
			[]string{"E0003"},
		},
		{
			"pure function calls impure function",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.fn("noisy", nil, nil),
					pure(s.fn("calm", nil, nil, s.do(s.call("noisy")))),
				}
			},
			[]string{"E0002", "E0003"},
		},
		{
			"pure function uses its locals",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					pure(s.fn("sum", params(s.param("a", s.typ("S32"))), nil,
						s.vr("total", nil, s.id("a")),
						s.assign(s.id("total"), s.bin(s.id("total"), "+", s.num(1))),
						s.ret(s.id("total")),
					)),
				}
			},
			nil,
		},
		{
			"pure function writes through its own parameter",
			func(s *src) []syntax.Decl {
				v := s.field("v", s.typ("S32"), nil)
				v.Reassignable = true
				return []syntax.Decl{
					s.class("Box", fields(v)),
					pure(s.fn("set", params(s.param("b", s.mutTyp("mut", "Box"))), nil,
						s.assign(s.member(s.id("b"), "v"), s.num(1)),
					)),
				}
			},
			nil,
		},
		{
			"pure function picks literal width through a generic call",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.generic(pure(s.fn("id", params(s.capture("x", s.typ("T"))), s.typ("T"), s.ret(s.id("x")))), "T"),
					pure(s.fn("byte", nil, s.typ("U8"), s.ret(s.call("id", s.num(5))))),
				}
			},
			nil,
		},
		{
			"global read before initialization",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.let("late", s.typ("S32"), nil),
					s.fn("read", nil, nil, s.ret(s.id("late"))),
				}
			},
			[]string{"E0004"},
		},
	})
}

func TestControlFlow(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"break outside loop",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil, s.brk())}
			},
			[]string{"E0011"},
		},
		{
			"continue inside loop",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil, s.while(s.boolean(true), s.cont()))}
			},
			nil,
		},
		{
			"missing return",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("pick", params(s.param("flag", s.typ("Bool"))), s.typ("S32"),
					s.ifElse(s.id("flag"), s.chunk(s.ret(s.num(1))), nil),
				)}
			},
			[]string{"E0012"},
		},
		{
			"return in both branches",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("pick", params(s.param("flag", s.typ("Bool"))), s.typ("S32"),
					s.ifElse(s.id("flag"), s.chunk(s.ret(s.num(1))), s.chunk(s.ret(s.num(2)))),
				)}
			},
			nil,
		},
		{
			"code after return",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.ret(nil),
					s.let("x", nil, s.num(1)),
					s.let("y", nil, s.num(2)),
				)}
			},
			[]string{"W0001"},
		},
	})
}
