// Package context_v2 provides the compiler-wide context shared by all
// compilation units of one compiler run.
//
// ARCHITECTURE:
// The context is created once and then only read: configuration, the
// intrinsic type catalog and the tracer never change after New. Each
// compilation unit is registered as a Module and tracks its own binding
// phase, so units can be bound concurrently.
//
// Every module gets its own universe scope from NewModuleScope. Scopes
// below one universe share declaration maps, so units bound in parallel
// must never share a universe.
package context_v2

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/emerge-lang/compiler-sub000/colors"
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/phase"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/syntax"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Module is one compilation unit and its binding state
type Module struct {
	Path string                  // File path of the unit
	Unit *syntax.CompilationUnit // Parsed syntax tree

	// Compilation state
	Phase phase.BindingPhase

	// Semantic data
	Scope       *table.SymbolTable // Module-level symbols
	Diagnostics *diagnostics.DiagnosticBag

	// Concurrency control
	Mu sync.Mutex // Protects Phase during parallel binding
}

// CompilerContext is the central compilation state manager
type CompilerContext struct {
	Config  *Config
	Catalog *types.Catalog

	// Trace receives phase traces when Config.Debug is set
	Trace io.Writer

	// Module registry: path -> Module
	Modules map[string]*Module
	mu      sync.RWMutex
}

// New creates a compiler context. A nil config selects the defaults.
func New(config *Config) (*CompilerContext, error) {
	if config == nil {
		config = &Config{}
	}

	catalog := types.DefaultCatalog()
	if config.Intrinsics != "" {
		var err error
		if catalog, err = types.LoadCatalog(config.Intrinsics); err != nil {
			return nil, err
		}
	}
	if config.DefaultIntegerType != "" {
		if err := catalog.SetDefaultInteger(config.DefaultIntegerType); err != nil {
			return nil, errors.Wrap(err, "config")
		}
	}

	return &CompilerContext{
		Config:  config,
		Catalog: catalog,
		Trace:   os.Stdout,
		Modules: make(map[string]*Module),
	}, nil
}

// Tracef prints a colored trace line in debug mode
func (ctx *CompilerContext) Tracef(format string, args ...any) {
	if !ctx.Config.Debug || ctx.Trace == nil {
		return
	}
	w := ctx.Trace
	if ctx.Config.NoColor {
		w = colors.Plain{Writer: w}
	}
	colors.CYAN.Fprintf(w, format+"\n", args...)
}

// NewModuleScope creates a fresh universe with the intrinsic types and
// operators and derives a module scope from it.
func (ctx *CompilerContext) NewModuleScope() *table.SymbolTable {
	universe := table.NewSymbolTable(ctx.Catalog)
	registerIntrinsics(universe)
	return universe.Derive(table.ScopeModule)
}

// AddModule registers a unit and gives it a module scope and diagnostic bag.
// Registering a path twice returns the existing module.
func (ctx *CompilerContext) AddModule(unit *syntax.CompilationUnit) *Module {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if m, exists := ctx.Modules[unit.Path]; exists {
		return m
	}
	m := &Module{
		Path:        unit.Path,
		Unit:        unit,
		Phase:       phase.PhaseNotStarted,
		Scope:       ctx.NewModuleScope(),
		Diagnostics: diagnostics.NewDiagnosticBag(),
	}
	ctx.Modules[unit.Path] = m
	return m
}

// GetModule retrieves a module by path
func (ctx *CompilerContext) GetModule(path string) (*Module, bool) {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	m, exists := ctx.Modules[path]
	return m, exists
}

// HasModule checks if a module exists in the context
func (ctx *CompilerContext) HasModule(path string) bool {
	_, exists := ctx.GetModule(path)
	return exists
}

// GetModulePhase returns the current phase of a module
func (ctx *CompilerContext) GetModulePhase(path string) phase.BindingPhase {
	m, exists := ctx.GetModule(path)
	if !exists {
		return phase.PhaseNotStarted
	}
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Phase
}

// AdvanceModulePhase advances a module to the next phase with validation
// Returns false if the phase transition is invalid (prerequisites not met)
func (ctx *CompilerContext) AdvanceModulePhase(path string, target phase.BindingPhase) bool {
	m, exists := ctx.GetModule(path)
	if !exists {
		return false
	}
	required, known := phase.PhasePrerequisites[target]
	if !known {
		return false
	}

	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.Phase != required {
		return false
	}
	m.Phase = target
	return true
}

// HasErrors returns true if any module reported an error
func (ctx *CompilerContext) HasErrors() bool {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	for _, m := range ctx.Modules {
		if m.Diagnostics.HasErrors() {
			return true
		}
	}
	return false
}

// EmitDiagnostics outputs the diagnostics of all modules in path order
func (ctx *CompilerContext) EmitDiagnostics(w io.Writer) {
	for _, name := range ctx.GetModuleNames() {
		m, _ := ctx.GetModule(name)
		m.Diagnostics.EmitAll(w, ctx.Config.SuppressConsecutive)
	}
}

// ModuleCount returns the number of modules in the context
func (ctx *CompilerContext) ModuleCount() int {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return len(ctx.Modules)
}

// GetModuleNames returns all module paths, sorted
func (ctx *CompilerContext) GetModuleNames() []string {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	names := make([]string, 0, len(ctx.Modules))
	for name := range ctx.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
