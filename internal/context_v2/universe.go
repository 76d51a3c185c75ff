package context_v2

import (
	"github.com/emerge-lang/compiler-sub000/internal/diagnostics"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/overload"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/symbols"
	"github.com/emerge-lang/compiler-sub000/internal/semantics/table"
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// Operator function names the binder looks up for operator syntax
const (
	OpPlus           = "plus"
	OpMinus          = "minus"
	OpTimes          = "times"
	OpDivideBy       = "divideBy"
	OpRem            = "rem"
	OpNegate         = "negate"
	OpNot            = "not"
	OpEquals         = "equals"
	OpLess           = "less"
	OpGreater        = "greater"
	OpLessOrEqual    = "lessOrEqual"
	OpGreaterOrEqual = "greaterOrEqual"
	OpGet            = "get"
	OpSet            = "set"
	OpSize           = "size"
)

// registerIntrinsics populates the universe scope with the catalog types and
// their operator functions
func registerIntrinsics(universe *table.SymbolTable) {
	c := universe.Catalog()
	symbolsByBase := make(map[*types.BaseType]*symbols.TypeSymbol)
	for _, base := range c.Bases() {
		ts := &symbols.TypeSymbol{Base: base, Location: intrinsicLocation(base.Name)}
		if err := universe.DeclareType(ts); err != nil {
			panic(err)
		}
		symbolsByBase[base] = ts
	}

	boolRef := c.BoolRef()
	for _, n := range c.Numerics() {
		ts := symbolsByBase[n]
		self := n.Ref(types.Immutable)
		for _, name := range []string{OpPlus, OpMinus, OpTimes, OpRem} {
			operator(ts, name, self, true, self)
		}
		// division by zero throws
		operator(ts, OpDivideBy, self, false, self)
		operator(ts, OpNegate, self, true)
		for _, name := range []string{OpLess, OpGreater, OpLessOrEqual, OpGreaterOrEqual, OpEquals} {
			operator(ts, name, boolRef, true, self)
		}
	}

	boolSym := symbolsByBase[c.Bool]
	operator(boolSym, OpNot, boolRef, true)
	operator(boolSym, OpEquals, boolRef, true, boolRef)

	stringSym := symbolsByBase[c.String]
	operator(stringSym, OpEquals, boolRef, true, c.StringRef().WithMutability(types.ReadOnly))

	registerArrayOperators(c, symbolsByBase[c.Array])

	// synthesized declarations must be valid; a conflict is a compiler bug
	for _, ts := range symbolsByBase {
		overload.ValidateType(universe, ts, diagnostics.FailOnErrorSink{})
	}
}

// Array<T>: get(index) -> T, set(index, value), size() -> index type.
// Indices use the default integer type.
func registerArrayOperators(c *types.Catalog, ts *symbols.TypeSymbol) {
	index := c.DefaultInteger.Ref(types.Immutable)
	element := &types.VariableRef{Param: ts.Base.Parameters[0]}

	get := operator(ts, OpGet, element, true, index)
	get.Receiver.Type = ts.Base.SelfRef(types.ReadOnly)
	get.Parameters[0].Name = "index"

	set := operator(ts, OpSet, c.UnitRef(), true, index, element)
	set.Receiver.Type = ts.Base.SelfRef(types.Mutable)
	set.Parameters[0].Name = "index"
	set.Parameters[1].Ownership = symbols.Owned

	size := operator(ts, OpSize, index, true)
	size.Operator = false
	size.Receiver.Type = ts.Base.SelfRef(types.ReadOnly)
}

// operator declares a pure intrinsic operator member on ts. Receiver and
// parameters are borrowed.
func operator(ts *symbols.TypeSymbol, name string, ret types.Type, nothrow bool, params ...types.Type) *symbols.Function {
	loc := intrinsicLocation(ts.Base.Name + "." + name)
	fn := &symbols.Function{
		Name:       name,
		ReturnType: ret,
		Purity:     symbols.Pure,
		Nothrow:    nothrow,
		Operator:   true,
		Intrinsic:  true,
		Location:   loc,
	}
	fn.Receiver = intrinsicParameter(fn, "self", ts.Base.SelfRef(types.ReadOnly), loc)
	for i, p := range params {
		fn.Parameters = append(fn.Parameters, intrinsicParameter(fn, parameterNames[i], p, loc))
	}
	ts.AddMember(fn)
	return fn
}

var parameterNames = []string{"other", "value"}

func intrinsicParameter(fn *symbols.Function, name string, t types.Type, loc *source.Location) *symbols.Variable {
	return &symbols.Variable{
		Name:      name,
		Kind:      symbols.SymbolParameter,
		Type:      t,
		Ownership: symbols.Borrowed,
		Owner:     fn,
		Location:  loc,
	}
}

func intrinsicLocation(what string) *source.Location {
	return source.Synthetic("intrinsic " + what)
}
