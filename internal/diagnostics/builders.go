package diagnostics

import (
	"fmt"
	"strings"

	"github.com/emerge-lang/compiler-sub000/internal/source"
)

// Common diagnostic builders for the binder

// UndefinedVariable creates a diagnostic for an unresolved identifier
func UndefinedVariable(loc *source.Location, name string) *Diagnostic {
	return NewError("undefined variable: "+name).
		WithCode(ErrUndefinedVariable).
		WithPrimaryLabel(loc, "not found in this scope").
		WithHelp("check if the variable is declared before its use")
}

// UndefinedType creates a diagnostic for an unresolved type name
func UndefinedType(loc *source.Location, name string) *Diagnostic {
	return NewError("undefined type: "+name).
		WithCode(ErrUndefinedType).
		WithPrimaryLabel(loc, "not found in this scope")
}

// RedeclaredSymbol creates a diagnostic for a name declared twice
func RedeclaredSymbol(newLoc, prevLoc *source.Location, name string) *Diagnostic {
	d := NewError(name+" is already declared").
		WithCode(ErrRedeclaredSymbol).
		WithPrimaryLabel(newLoc, "redeclared here")
	if !prevLoc.IsSynthetic() {
		d.WithSecondaryLabel(prevLoc, "previously declared here")
	}
	return d.WithHelp("use a different name or remove one of the declarations")
}

// TypeMismatch creates a diagnostic for a value not assignable to its target
func TypeMismatch(loc *source.Location, found, expected string) *Diagnostic {
	return NewError(fmt.Sprintf("a value of type %s cannot be assigned to %s", found, expected)).
		WithCode(ErrTypeMismatch).
		WithPrimaryLabel(loc, "expected "+expected)
}

// UnsatisfiableConstraints creates a diagnostic for a type parameter whose
// lower bound exceeds its upper bound
func UnsatisfiableConstraints(loc *source.Location, param, lower, upper string) *Diagnostic {
	return NewError(fmt.Sprintf("unsatisfiable constraints for type parameter %s", param)).
		WithCode(ErrUnsatisfiableConstraints).
		WithPrimaryLabel(loc, "no type fits here").
		WithNote(fmt.Sprintf("%s must be a supertype of %s", param, lower)).
		WithNote(fmt.Sprintf("%s must be a subtype of %s", param, upper))
}

// IntegerOutOfRange creates a diagnostic for a literal that does not fit its type
func IntegerOutOfRange(loc *source.Location, value, typeName string) *Diagnostic {
	return NewError(fmt.Sprintf("integer literal %s does not fit into %s", value, typeName)).
		WithCode(ErrIntegerOutOfRange).
		WithPrimaryLabel(loc, "out of range")
}

// CyclicInference creates a diagnostic for a return type that depends on itself
func CyclicInference(loc *source.Location, function string) *Diagnostic {
	return NewError(fmt.Sprintf("cannot infer the return type of %s, the inference is cyclic", function)).
		WithCode(ErrCyclicInference).
		WithPrimaryLabel(loc, "needed here").
		WithHelp("declare the return type explicitly")
}

// NoMatchingOverload creates a diagnostic for a call no candidate accepts
func NoMatchingOverload(loc *source.Location, name, arguments string, candidates []string) *Diagnostic {
	d := NewError(fmt.Sprintf("no overload of %s accepts the arguments (%s)", name, arguments)).
		WithCode(ErrNoMatchingOverload).
		WithPrimaryLabel(loc, "no matching overload")
	for _, c := range candidates {
		d.WithNote("candidate: " + c)
	}
	return d
}

// UnknownFunction creates a diagnostic for a call of a name nothing declares
func UnknownFunction(loc *source.Location, name string) *Diagnostic {
	return NewError("unknown function: "+name).
		WithCode(ErrUnknownFunction).
		WithPrimaryLabel(loc, "no function with this name")
}

// AmbiguousInvocation creates a diagnostic for a call several candidates accept
func AmbiguousInvocation(loc *source.Location, name string, candidates []string) *Diagnostic {
	return NewError(fmt.Sprintf("ambiguous invocation of %s", name)).
		WithCode(ErrAmbiguousInvocation).
		WithPrimaryLabel(loc, "matches "+fmt.Sprint(len(candidates))+" overloads").
		WithNote("candidates: " + strings.Join(candidates, "; ")).
		WithHelp("add explicit types or type arguments")
}

// OverloadSetNotDisjoint creates a diagnostic for two overloads no call could tell apart
func OverloadSetNotDisjoint(loc, prevLoc *source.Location, name string, arity int) *Diagnostic {
	d := NewError(fmt.Sprintf("overloads of %s with %d parameters are not disjoint", name, arity)).
		WithCode(ErrOverloadSetNotDisjoint).
		WithPrimaryLabel(loc, "conflicting overload")
	if prevLoc != nil && !prevLoc.IsSynthetic() {
		d.WithSecondaryLabel(prevLoc, "conflicts with this overload")
	}
	return d.WithHelp("make at least one parameter type disjoint from the other overload")
}

// InconsistentReceiver creates a diagnostic for an overload set mixing functions
// with and without a receiver
func InconsistentReceiver(loc *source.Location, name string) *Diagnostic {
	return NewError(fmt.Sprintf("overloads of %s must either all declare a receiver or none", name)).
		WithCode(ErrInconsistentReceiver).
		WithPrimaryLabel(loc, "receiver declaration differs from the other overloads")
}

// AmbiguousInheritedOverload creates a diagnostic for a type inheriting overloads
// that conflict with each other
func AmbiguousInheritedOverload(loc *source.Location, typeName, name string, supertypes []string) *Diagnostic {
	return NewError(fmt.Sprintf("%s inherits conflicting overloads of %s", typeName, name)).
		WithCode(ErrAmbiguousInheritedOverload).
		WithPrimaryLabel(loc, "declared here").
		WithNote("introduced by: "+strings.Join(supertypes, ", ")).
		WithHelp("override the function in " + typeName)
}

// TypeArgumentCount creates a diagnostic for explicit type arguments that do not
// match the declared parameters
func TypeArgumentCount(loc *source.Location, name string, expected, found int) *Diagnostic {
	return NewError(fmt.Sprintf("%s expects %d type arguments, found %d", name, expected, found)).
		WithCode(ErrTypeArgumentCount).
		WithPrimaryLabel(loc, "wrong number of type arguments")
}

// UndefinedMember creates a diagnostic for a member a type does not have
func UndefinedMember(loc *source.Location, typeName, member string) *Diagnostic {
	return NewError(fmt.Sprintf("%s has no member %s", typeName, member)).
		WithCode(ErrUndefinedMember).
		WithPrimaryLabel(loc, "unknown member")
}

// TypeUsedAsValue creates a diagnostic for a type name in value position
func TypeUsedAsValue(loc *source.Location, name string) *Diagnostic {
	return NewError(fmt.Sprintf("type %s cannot be used as a value", name)).
		WithCode(ErrTypeUsedAsValue).
		WithPrimaryLabel(loc, "this is a type").
		WithHelp("call the constructor: " + name + "(...)")
}

// NotAnOperator creates a diagnostic for operator syntax bound to a plain function
func NotAnOperator(loc *source.Location, function string) *Diagnostic {
	return NewError(fmt.Sprintf("%s is not declared as an operator", function)).
		WithCode(ErrNotAnOperator).
		WithPrimaryLabel(loc, "operator syntax used here").
		WithHelp("add the operator attribute to the function")
}

// NothrowViolation creates a diagnostic for code that may throw inside a nothrow boundary
func NothrowViolation(loc *source.Location, what, boundary string) *Diagnostic {
	return NewError(fmt.Sprintf("%s may throw, but the %s must not throw", what, boundary)).
		WithCode(ErrNothrowViolation).
		WithPrimaryLabel(loc, "may throw")
}

// PurityViolation creates a diagnostic for state accessed outside a purity boundary
func PurityViolation(loc *source.Location, write bool, what, boundary string) *Diagnostic {
	if write {
		return NewError(fmt.Sprintf("the %s cannot modify %s", boundary, what)).
			WithCode(ErrPurityWriteViolation).
			WithPrimaryLabel(loc, "writes outside state")
	}
	return NewError(fmt.Sprintf("the %s cannot read %s", boundary, what)).
		WithCode(ErrPurityReadViolation).
		WithPrimaryLabel(loc, "reads outside state")
}

// UninitializedUse creates a diagnostic for a variable read before assignment
func UninitializedUse(loc *source.Location, name string, maybe bool) *Diagnostic {
	msg := fmt.Sprintf("variable %s is used before it is initialized", name)
	if maybe {
		msg = fmt.Sprintf("variable %s may not be initialized here", name)
	}
	return NewError(msg).
		WithCode(ErrUninitializedUse).
		WithPrimaryLabel(loc, "used here")
}

// ReassignFinal creates a diagnostic for an assignment to a non-reassignable variable
func ReassignFinal(loc, declLoc *source.Location, name string) *Diagnostic {
	d := NewError("cannot assign to a non-reassignable variable: " + name).
		WithCode(ErrReassignFinal).
		WithPrimaryLabel(loc, "assigned again here")
	if declLoc != nil && !declLoc.IsSynthetic() {
		d.WithSecondaryLabel(declLoc, "declared here")
	}
	return d.WithHelp("declare it with var to allow reassignment")
}

// UseAfterLifetimeEnd creates a diagnostic for a variable used after its value moved
func UseAfterLifetimeEnd(loc, endLoc *source.Location, name string) *Diagnostic {
	d := NewError(fmt.Sprintf("variable %s is used after its lifetime ended", name)).
		WithCode(ErrUseAfterLifetimeEnd).
		WithPrimaryLabel(loc, "used here")
	if endLoc != nil && !endLoc.IsSynthetic() {
		d.WithSecondaryLabel(endLoc, "lifetime ends here")
	}
	return d
}

// LifetimeEndInLoop creates a diagnostic for a lifetime ending in a loop that may repeat
func LifetimeEndInLoop(loc *source.Location, name string) *Diagnostic {
	return NewError(fmt.Sprintf("the lifetime of %s ends inside a loop that may run more than once", name)).
		WithCode(ErrLifetimeEndInLoop).
		WithPrimaryLabel(loc, "lifetime ends here")
}

// ConflictingBorrow creates a diagnostic for a variable borrowed twice by one call
func ConflictingBorrow(loc, otherLoc *source.Location, name string) *Diagnostic {
	d := NewError(fmt.Sprintf("%s is borrowed mutably while it is borrowed elsewhere", name)).
		WithCode(ErrConflictingBorrow).
		WithPrimaryLabel(loc, "conflicting borrow")
	if otherLoc != nil && !otherLoc.IsSynthetic() {
		d.WithSecondaryLabel(otherLoc, "also borrowed here")
	}
	return d
}

// BorrowedValueCaptured creates a diagnostic for storing a borrowed value
func BorrowedValueCaptured(loc *source.Location, name string) *Diagnostic {
	return NewError(fmt.Sprintf("borrowed value %s cannot be captured", name)).
		WithCode(ErrBorrowedValueCaptured).
		WithPrimaryLabel(loc, "captured here").
		WithHelp("declare the parameter with capture")
}

// NotThrowable creates a diagnostic for throwing a value that is not Throwable
func NotThrowable(loc *source.Location, typeName string) *Diagnostic {
	return NewError(fmt.Sprintf("a value of type %s cannot be thrown", typeName)).
		WithCode(ErrNotThrowable).
		WithPrimaryLabel(loc, "not a Throwable")
}

// JumpOutsideLoop creates a diagnostic for break or continue without a loop
func JumpOutsideLoop(loc *source.Location, keyword string) *Diagnostic {
	return NewError(keyword+" outside of a loop").
		WithCode(ErrJumpOutsideLoop).
		WithPrimaryLabel(loc, "no enclosing loop")
}

// MissingReturn creates a diagnostic for a function that can end without a value
func MissingReturn(loc *source.Location, function, returnType string) *Diagnostic {
	return NewError(fmt.Sprintf("%s must return a value of type %s on every path", function, returnType)).
		WithCode(ErrMissingReturn).
		WithPrimaryLabel(loc, "control can reach the end of the body")
}

// MutabilityViolation creates a diagnostic for a write through a non-mutable reference
func MutabilityViolation(loc *source.Location, typeName string) *Diagnostic {
	return NewError(fmt.Sprintf("cannot modify a value through a reference of type %s", typeName)).
		WithCode(ErrMutabilityViolation).
		WithPrimaryLabel(loc, "not mutable")
}

// UnreachableCode creates a warning for statements that never run
func UnreachableCode(loc *source.Location) *Diagnostic {
	return NewWarning("unreachable code").
		WithCode(WarnUnreachableCode).
		WithPrimaryLabel(loc, "this code never runs")
}

// InvalidAssignmentTarget creates a diagnostic for assigning to something that is not a place
func InvalidAssignmentTarget(loc *source.Location) *Diagnostic {
	return NewError("cannot assign to this expression").
		WithCode(ErrTypeMismatch).
		WithPrimaryLabel(loc, "not a variable, member or element")
}

// ClassAsSupertype creates a diagnostic for inheriting from a class
func ClassAsSupertype(loc *source.Location, name string) *Diagnostic {
	return NewError(fmt.Sprintf("%s is a class; only interfaces can be supertypes", name)).
		WithCode(ErrTypeMismatch).
		WithPrimaryLabel(loc, "classes are final")
}
