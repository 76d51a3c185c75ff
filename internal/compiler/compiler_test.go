package compiler

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/emerge-lang/compiler-sub000/colors"
	"github.com/emerge-lang/compiler-sub000/internal/context_v2"
	"github.com/emerge-lang/compiler-sub000/internal/phase"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/binding"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
)

func span(file string, line, col, endLine, endCol int) source.Location {
	return *source.Span(file, line, col, endLine, endCol)
}

// mainUnit is
//
//	fn main() {
//	    let x = 42
//	    return <value>
//	}
func mainUnit(path, value string) *syntax.CompilationUnit {
	return &syntax.CompilationUnit{
		Path: path,
		Declarations: []syntax.Decl{
			&syntax.FunctionDeclaration{
				Name: "main",
				Body: &syntax.CodeChunk{
					Statements: []syntax.Statement{
						&syntax.VariableDeclaration{
							Name:        "x",
							Initializer: &syntax.IntegerLiteral{Value: big.NewInt(42), Location: span(path, 2, 13, 2, 15)},
							Location:    span(path, 2, 5, 2, 15),
						},
						&syntax.Return{
							Value:    &syntax.Identifier{Name: value, Location: span(path, 3, 12, 3, 13)},
							Location: span(path, 3, 5, 3, 13),
						},
					},
					Location: span(path, 1, 11, 4, 2),
				},
				Location: span(path, 1, 1, 4, 2),
			},
		},
	}
}

func newContext(t *testing.T, config *context_v2.Config) *context_v2.CompilerContext {
	t.Helper()
	ctx, err := context_v2.New(config)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return ctx
}

func TestBind_Success(t *testing.T) {
	ctx := newContext(t, nil)

	result := Bind(ctx, mainUnit("main.em", "x"))

	if !result.Success {
		t.Errorf("Expected successful binding, got %s", result.Module.Diagnostics.EmitAllToString(false))
	}
	if result.Module.Phase != phase.PhaseValidated {
		t.Errorf("Expected module to reach Validated, got %v", result.Module.Phase)
	}
	if len(result.Unit.Functions) != 1 {
		t.Fatalf("Expected 1 bound function, got %d", len(result.Unit.Functions))
	}
	if binding.Reached(result.Unit.Functions[0]) != phase.PhaseValidated {
		t.Error("Expected the function to be validated")
	}
}

func TestBind_Failure(t *testing.T) {
	ctx := newContext(t, nil)

	result := Bind(ctx, mainUnit("main.em", "y"))

	if result.Success {
		t.Error("Expected binding to fail for an undefined variable")
	}
	if !ctx.HasErrors() {
		t.Error("Expected the context to report errors")
	}
	if got := result.Module.Diagnostics.WithCode("R0001"); len(got) != 1 {
		t.Errorf("Expected one undefined variable error, got %d", len(got))
	}

	var out bytes.Buffer
	ctx.EmitDiagnostics(&out)
	if !strings.Contains(colors.StripANSI(out.String()), "y") {
		t.Errorf("Expected the emitted diagnostics to name the variable, got %q", out.String())
	}
}

func TestBind_NodeAt(t *testing.T) {
	ctx := newContext(t, nil)
	result := Bind(ctx, mainUnit("main.em", "x"))

	tests := []struct {
		line, col int
		expected  string
	}{
		{3, 12, "*binding.IdentifierExpression"},
		{3, 6, "*binding.ReturnStatement"},
		{2, 14, "*binding.IntegerLiteral"},
		{2, 6, "*binding.VariableDeclaration"},
		{4, 1, "*binding.CodeChunk"},
	}
	for _, tt := range tests {
		n, ok := result.NodeAt(source.Position{Line: tt.line, Column: tt.col})
		if !ok {
			t.Errorf("NodeAt(%d:%d): expected %s, got nothing", tt.line, tt.col, tt.expected)
			continue
		}
		if got := fmt.Sprintf("%T", n); got != tt.expected {
			t.Errorf("NodeAt(%d:%d): expected %s, got %s", tt.line, tt.col, tt.expected, got)
		}
	}

	if _, ok := result.NodeAt(source.Position{Line: 9, Column: 1}); ok {
		t.Error("Expected no node past the end of the unit")
	}
}

func TestBindAll(t *testing.T) {
	ctx := newContext(t, nil)
	var units []*syntax.CompilationUnit
	for i := 0; i < 8; i++ {
		value := "x"
		if i%2 == 1 {
			value = "missing"
		}
		units = append(units, mainUnit(fmt.Sprintf("unit%d.em", i), value))
	}

	results := BindAll(ctx, units)

	if len(results) != len(units) {
		t.Fatalf("Expected %d results, got %d", len(units), len(results))
	}
	for i, r := range results {
		if r.Module.Path != units[i].Path {
			t.Errorf("Expected result %d for %s, got %s", i, units[i].Path, r.Module.Path)
		}
		if want := i%2 == 0; r.Success != want {
			t.Errorf("Expected success %v for %s, got %v", want, r.Module.Path, r.Success)
		}
		if got := ctx.GetModulePhase(r.Module.Path); got != phase.PhaseValidated {
			t.Errorf("Expected %s to reach Validated, got %v", r.Module.Path, got)
		}
	}
	if ctx.ModuleCount() != len(units) {
		t.Errorf("Expected %d modules, got %d", len(units), ctx.ModuleCount())
	}
}

func TestBind_DebugTrace(t *testing.T) {
	var out bytes.Buffer
	ctx := newContext(t, &context_v2.Config{Debug: true})
	ctx.Trace = &out

	Bind(ctx, mainUnit("main.em", "x"))

	trace := colors.StripANSI(out.String())
	for _, want := range []string{"[Phase 1] Resolving main.em", "[Phase 2] Inferring main.em", "[Phase 3] Validating main.em"} {
		if !strings.Contains(trace, want) {
			t.Errorf("Expected trace to contain %q, got %q", want, trace)
		}
	}
}
