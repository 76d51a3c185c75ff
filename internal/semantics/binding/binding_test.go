package binding

import (
	"testing"

	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/phase"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

func TestNameResolution(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"undefined variable",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil, s.ret(s.id("nope")))}
			},
			[]string{"R0001"},
		},
		{
			"undefined type",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", params(s.param("x", s.typ("Nope"))), nil)}
			},
			[]string{"R0002"},
		},
		{
			"redeclared local",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.let("x", nil, s.num(1)),
					s.let("x", nil, s.num(2)),
				)}
			},
			[]string{"R0005"},
		},
		{
			"parameter shadowed by local",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", params(s.param("x", s.typ("S32"))), nil,
					s.let("x", nil, s.num(2)),
				)}
			},
			[]string{"R0005"},
		},
		{
			"same name in sibling blocks",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.chunk(s.let("x", nil, s.num(1))),
					s.chunk(s.let("x", nil, s.num(2))),
				)}
			},
			nil,
		},
		{
			"block local invisible after block",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil,
					s.chunk(s.let("x", nil, s.num(1))),
					s.ret(s.id("x")),
				)}
			},
			[]string{"R0001"},
		},
		{
			"redeclared class",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.class("Foo", nil), s.class("Foo", nil)}
			},
			[]string{"R0005"},
		},
		{
			"type used as value",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.class("Foo", nil), s.fn("main", nil, nil, s.ret(s.id("Foo")))}
			},
			[]string{"T0006"},
		},
		{
			"unknown function",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil, s.do(s.call("missing")))}
			},
			[]string{"O0002"},
		},
		{
			"undefined member",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Point", fields(s.field("x", s.typ("S32"), nil))),
					s.fn("main", params(s.param("p", s.typ("Point"))), nil, s.ret(s.member(s.id("p"), "z"))),
				}
			},
			[]string{"R0004"},
		},
		{
			"declaration order does not matter",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.fn("main", nil, nil, s.ret(s.call("helper", s.call("Foo")))),
					s.fn("helper", params(s.param("f", s.typ("Foo"))), s.typ("S32"), s.ret(s.num(1))),
					s.class("Foo", nil),
				}
			},
			nil,
		},
	})
}

func TestTypeChecks(t *testing.T) {
	runPrograms(t, []struct {
		name  string
		decls program
		want  []string
	}{
		{
			"declared type mismatch",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil, s.let("b", s.typ("Bool"), s.num(1)))}
			},
			[]string{"T0001"},
		},
		{
			"literal fits parameter",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.fn("takesByte", params(s.param("b", s.typ("U8"))), nil),
					s.fn("main", nil, nil, s.do(s.call("takesByte", s.num(200)))),
				}
			},
			nil,
		},
		{
			"literal exceeds parameter",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.fn("takesByte", params(s.param("b", s.typ("U8"))), nil),
					s.fn("main", nil, nil, s.do(s.call("takesByte", s.num(300)))),
				}
			},
			[]string{"T0005"},
		},
		{
			"wrong type argument count",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", params(s.param("a", s.typ("Array"))), nil)}
			},
			[]string{"T0004"},
		},
		{
			"condition must be bool",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, nil, s.while(s.num(1)))}
			},
			[]string{"T0001"},
		},
		{
			"returned value must match declared type",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{s.fn("main", nil, s.typ("Bool"), s.ret(s.str("yes")))}
			},
			[]string{"T0001"},
		},
		{
			"null needs nullable type",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.class("Foo", nil),
					s.fn("main", nil, nil,
						s.let("a", s.nullable("Foo"), s.null()),
						s.let("b", s.typ("Foo"), s.null()),
					),
				}
			},
			[]string{"T0001"},
		},
		{
			"array element access",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.fn("first", params(s.param("a", s.typ("Array", s.typ("S32")))), s.typ("S32"),
						s.ret(s.index(s.id("a"), s.num(0))),
					),
					s.fn("put", params(s.param("a", s.mutTyp("mut", "Array", s.typ("S32")))), nil,
						s.assign(s.index(s.id("a"), s.num(0)), s.num(7)),
					),
				}
			},
			nil,
		},
		{
			"assignment to a call",
			func(s *src) []syntax.Decl {
				return []syntax.Decl{
					s.fn("five", nil, s.typ("S32"), s.ret(s.num(5))),
					s.fn("main", nil, nil, s.assign(s.call("five"), s.num(6))),
				}
			},
			[]string{"T0001"},
		},
	})
}

func TestGenericLiteralWidth(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		value    int64
		expected string
		want     []string
	}{
		{"expected type picks width", "U8", 5, "U8", nil},
		{"default width without expected integer", "", 5, "S32", nil},
		{"literal exceeds expected type", "U8", 300, "S32", []string{"T0001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &src{}
			var declared syntax.TypeNode
			if tt.declared != "" {
				declared = s.typ(tt.declared)
			}
			u, bag := bind(t,
				s.generic(s.fn("id", params(s.capture("x", s.typ("T"))), s.typ("T"), s.ret(s.id("x"))), "T"),
				s.fn("main", nil, nil, s.let("y", declared, s.call("id", s.num(tt.value)))),
			)
			expectCodes(t, bag, tt.want...)

			call := find[*InvocationExpression](function(t, u, "main"))
			if call == nil || call.Type() == nil {
				t.Fatal("Expected a typed invocation of id")
			}
			if got := call.Type().String(); got != tt.expected {
				t.Errorf("Expected id to return %s, got %s", tt.expected, got)
			}
			literal := find[*IntegerLiteral](call)
			if literal == nil || literal.Type() == nil {
				t.Fatal("Expected a typed literal argument")
			}
			if got := literal.Type().String(); got != tt.expected {
				t.Errorf("Expected the literal to be typed %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestReturnTypeInference(t *testing.T) {
	s := &src{}
	u, bag := bind(t,
		s.fn("useFive", nil, nil, s.ret(s.call("five"))),
		s.fn("five", nil, nil, s.ret(s.num(5))),
		s.fn("nothing", nil, nil),
		s.fn("pick", params(s.param("flag", s.typ("Bool"))), nil,
			s.ret(s.ifElse(s.id("flag"), s.chunk(s.do(s.num(1))), s.chunk(s.do(s.num(2))))),
		),
	)
	expectCodes(t, bag)

	tests := []struct {
		function string
		want     string
	}{
		{"five", "S32"},
		{"useFive", "S32"},
		{"nothing", "Unit"},
		{"pick", "S32"},
	}
	for _, tt := range tests {
		fn := function(t, u, tt.function).Function
		ref, ok := fn.ReturnType.(*types.RootRef)
		if !ok {
			t.Errorf("Expected %s to return a named type, got %v", tt.function, fn.ReturnType)
			continue
		}
		if ref.Base.Name != tt.want {
			t.Errorf("Expected %s to return %s, got %s", tt.function, tt.want, ref.Base.Name)
		}
		if ref.Mut != types.Immutable {
			t.Errorf("Expected %s to return an immutable value, got %v", tt.function, ref.Mut)
		}
	}
}

func TestReturnTypeInferenceThrowing(t *testing.T) {
	s := &src{}
	boom := s.class("Boom", nil)
	boom.Supertypes = []*syntax.NamedType{s.typ("Throwable")}
	u, bag := bind(t, boom, s.fn("fail", nil, nil, s.throw(s.call("Boom"))))
	expectCodes(t, bag)

	rt := function(t, u, "fail").Function.ReturnType
	if ref, ok := rt.(*types.RootRef); !ok || ref.Base.Kind != types.Bottom {
		t.Errorf("Expected Nothing, got %v", rt)
	}
}

func TestCyclicInference(t *testing.T) {
	tests := []struct {
		name string
		b    func(s *src) *syntax.FunctionDeclaration
	}{
		{"one call back", func(s *src) *syntax.FunctionDeclaration {
			return s.fn("b", nil, nil, s.ret(s.call("a")))
		}},
		{"two calls back", func(s *src) *syntax.FunctionDeclaration {
			return s.fn("b", nil, nil, s.do(s.call("a")), s.ret(s.call("a")))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &src{}
			u, bag := bind(t, s.fn("a", nil, nil, s.ret(s.call("b"))), tt.b(s))

			cycles := bag.WithCode(diagnostics.ErrCyclicInference)
			if len(cycles) != 1 {
				t.Fatalf("Expected exactly one cyclic inference error, got %v", describeAll(bag))
			}
			a := function(t, u, "a")
			if cycles[0].Location().String() != a.Function.Location.String() {
				t.Errorf("Expected the error at %s, got %s", a.Function.Location, cycles[0].Location())
			}
			for _, name := range []string{"a", "b"} {
				if function(t, u, name).Function.ReturnType == nil {
					t.Errorf("Expected %s to end up with a return type", name)
				}
			}
		})
	}
}

func TestOperators(t *testing.T) {
	s := &src{}
	u, bag := bind(t,
		s.fn("compare", params(s.param("a", s.typ("S32")), s.param("b", s.typ("S32"))), nil,
			s.ret(s.bin(s.bin(s.id("a"), "!=", s.id("b")), "&&", s.unary("!", s.bin(s.id("a"), "<", s.num(0))))),
		),
	)
	expectCodes(t, bag)

	fn := function(t, u, "compare")
	if rt := fn.Function.ReturnType.(*types.RootRef); rt.Base.Name != "Bool" {
		t.Errorf("Expected Bool, got %s", rt.Base.Name)
	}

	var ops []*BinaryExpression
	Walk(fn, func(n Node) bool {
		if b, ok := n.(*BinaryExpression); ok {
			ops = append(ops, b)
		}
		return true
	})
	if len(ops) != 3 {
		t.Fatalf("Expected 3 binary expressions, got %d", len(ops))
	}

	and, ne, less := ops[0], ops[1], ops[2]
	if and.Invocation != nil {
		t.Error("Expected && to be evaluated natively")
	}
	if !ne.Negated || ne.Invocation.Name != "equals" {
		t.Errorf("Expected != to invoke equals negated, got %s (negated %v)", ne.Invocation.Name, ne.Negated)
	}
	if less.Invocation.Function() == nil || less.Invocation.Function().Name != "less" {
		t.Error("Expected < to invoke less")
	}
}

func TestOperatorFunction(t *testing.T) {
	tests := []struct {
		op     string
		name   string
		native bool
	}{
		{"+", "plus", false},
		{"/", "divideBy", false},
		{"==", "equals", false},
		{"!=", "equals", false},
		{">=", "greaterOrEqual", false},
		{"&&", "", true},
		{"||", "", true},
	}
	for _, tt := range tests {
		name, native := OperatorFunction(tt.op)
		if name != tt.name || native != tt.native {
			t.Errorf("Expected %s to map to (%q, %v), got (%q, %v)", tt.op, tt.name, tt.native, name, native)
		}
	}
}

func TestNotAnOperator(t *testing.T) {
	s := &src{}
	vec := s.class("Vec", nil, s.fn("plus", params(s.param("other", s.typ("Vec"))), s.typ("S32"), s.ret(s.num(1))))
	_, bag := bind(t, vec,
		s.fn("add", params(s.param("a", s.typ("Vec")), s.param("b", s.typ("Vec"))), nil,
			s.ret(s.bin(s.id("a"), "+", s.id("b"))),
		),
	)
	expectCodes(t, bag, "O0007")
}

func TestFallbackMismatchIsConsecutive(t *testing.T) {
	tests := []struct {
		name string
		body func(s *src) syntax.Statement
	}{
		{"declared variable", func(s *src) syntax.Statement {
			return s.let("r", s.typ("String"), s.call("f", s.id("a")))
		}},
		{"loop condition", func(s *src) syntax.Statement {
			return s.while(s.call("f", s.id("a")), s.brk())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &src{}
			_, bag := bind(t,
				s.fn("f", params(s.param("x", s.typ("S32"))), s.typ("S32"), s.ret(s.id("x"))),
				s.fn("f", params(s.param("x", s.typ("Bool"))), s.typ("S32"), s.ret(s.num(1))),
				s.fn("main", params(s.param("a", s.typ("String"))), nil, tt.body(s)),
			)
			expectCodes(t, bag, "O0001", "T0001")

			primary := bag.Primary()
			if len(primary) != 1 || primary[0].Code != diagnostics.ErrNoMatchingOverload {
				t.Errorf("Expected only the overload error to be primary, got %v", describeAll(bag))
			}
			for _, d := range bag.WithCode(diagnostics.ErrTypeMismatch) {
				if d.Severity != diagnostics.Consecutive {
					t.Errorf("Expected the mismatch to be consecutive, got %v", d.Severity)
				}
			}
		})
	}
}

func TestPhasesAreIdempotent(t *testing.T) {
	s := &src{}
	u, bag := bind(t, s.fn("main", nil, nil, s.ret(s.id("nope"))))
	expectCodes(t, bag, "R0001")

	Resolve(u, bag)
	Infer(u, bag)
	Validate(u, bag)
	if len(bag.Diagnostics()) != 1 {
		t.Errorf("Expected repeated phases not to report again, got %v", describeAll(bag))
	}

	other := diagnostics.NewDiagnosticBag()
	replayed := Resolve(u, other)
	if len(replayed) != 1 || len(other.Diagnostics()) != 1 {
		t.Errorf("Expected the recorded diagnostic to be replayed into a new sink, got %v", describeAll(other))
	}
}

func TestPhaseOrderViolation(t *testing.T) {
	s := &src{}
	unit := &syntax.CompilationUnit{Path: "test.em", Declarations: []syntax.Decl{s.fn("main", nil, nil)}}
	u := New(unit, newModuleScope(t), Options{})

	defer func() {
		r := recover()
		v, ok := r.(*phase.OrderViolation)
		if !ok {
			t.Fatalf("Expected an order violation, got %v", r)
		}
		if v.Requested != phase.PhaseInferred || v.Reached != phase.PhaseNotStarted {
			t.Errorf("Expected inference requested before resolution, got %v", v)
		}
	}()
	Infer(u, diagnostics.NewDiagnosticBag())
}

func TestReached(t *testing.T) {
	s := &src{}
	unit := &syntax.CompilationUnit{Path: "test.em", Declarations: []syntax.Decl{
		s.fn("main", nil, nil, s.let("x", nil, s.num(1)), s.ret(s.id("x"))),
	}}
	u := New(unit, newModuleScope(t), Options{})
	bag := diagnostics.NewDiagnosticBag()

	if Reached(u) != phase.PhaseNotStarted {
		t.Errorf("Expected NotStarted, got %v", Reached(u))
	}
	Resolve(u, bag)
	if Reached(u) != phase.PhaseResolved {
		t.Errorf("Expected Resolved, got %v", Reached(u))
	}
	Infer(u, bag)
	Validate(u, bag)

	Walk(u, func(n Node) bool {
		if Reached(n) != phase.PhaseValidated {
			t.Errorf("Expected %T to be validated, got %v", n, Reached(n))
		}
		return true
	})
}

func TestTracing(t *testing.T) {
	s := &src{}
	unit := &syntax.CompilationUnit{Path: "trace.em", Declarations: []syntax.Decl{s.fn("main", nil, nil)}}
	var lines []string
	u := New(unit, newModuleScope(t), Options{Tracef: func(format string, args ...any) {
		lines = append(lines, format)
	}})
	u.Bind(diagnostics.NewDiagnosticBag())

	if len(lines) != 3 {
		t.Errorf("Expected one trace line per phase, got %v", lines)
	}
}
