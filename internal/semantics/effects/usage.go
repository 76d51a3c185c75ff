package effects

import (
	"github.com/emerge-lang/compiler-sub000/internal/source"
	"github.com/emerge-lang/compiler-sub000/internal/types"
)

// UsageKind says how a parent consumes the value of a child node.
type UsageKind int

const (
	// Read values are inspected and dropped.
	Read UsageKind = iota
	// WriteTarget is the left side of an assignment.
	WriteTarget
	// Borrow hands the value out for the duration of a call.
	Borrow
	// Capture stores the value in longer lived storage.
	Capture
)

func (k UsageKind) String() string {
	switch k {
	case WriteTarget:
		return "write target"
	case Borrow:
		return "borrow"
	case Capture:
		return "capture"
	default:
		return "read"
	}
}

// ValueUsage is pushed from a parent to a child before the child's phase 2.
// It is not kept beyond binding.
type ValueUsage struct {
	Kind UsageKind
	// Mutability the consumer requires for borrows and captures.
	Mutability types.Mutability
	Location   *source.Location
}

// ReadUsage is the default usage of a node nobody pushed one to.
func ReadUsage(loc *source.Location) ValueUsage {
	return ValueUsage{Kind: Read, Mutability: types.ReadOnly, Location: loc}
}

// CaptureAs captures a value into storage of the given type.
func CaptureAs(t types.Type, loc *source.Location) ValueUsage {
	m := types.ReadOnly
	if t != nil {
		m = t.Mutability()
	}
	return ValueUsage{Kind: Capture, Mutability: m, Location: loc}
}

// BorrowAs borrows a value for a parameter of the given type.
func BorrowAs(t types.Type, loc *source.Location) ValueUsage {
	m := types.ReadOnly
	if t != nil {
		m = t.Mutability()
	}
	return ValueUsage{Kind: Borrow, Mutability: m, Location: loc}
}

// RequiresIncrement reports whether the consumer needs a reference count
// increment on a value produced with resultCounted: captures keep the value
// alive beyond the producer, unless the producer already handed over a
// counted reference.
func RequiresIncrement(usage ValueUsage, resultCounted bool) bool {
	return usage.Kind == Capture && !resultCounted
}

// RequiresDecrement reports whether a counted temporary must be released after
// the consumer is done with it.
func RequiresDecrement(usage ValueUsage, resultCounted bool) bool {
	return resultCounted && usage.Kind != Capture
}
