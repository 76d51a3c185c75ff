package diagnostics

// Error codes of the binder
const (
	// Name resolution errors (R prefix)
	ErrUndefinedVariable = "R0001"
	ErrUndefinedType     = "R0002"
	ErrUndefinedFunction = "R0003"
	ErrUndefinedMember   = "R0004"
	ErrRedeclaredSymbol  = "R0005"

	// Type errors (T prefix)
	ErrTypeMismatch             = "T0001"
	ErrUnsatisfiableConstraints = "T0002"
	ErrCyclicInference          = "T0003"
	ErrTypeArgumentCount        = "T0004"
	ErrIntegerOutOfRange        = "T0005"
	ErrTypeUsedAsValue          = "T0006"

	// Overload resolution errors (O prefix)
	ErrNoMatchingOverload         = "O0001"
	ErrUnknownFunction            = "O0002"
	ErrAmbiguousInvocation        = "O0003"
	ErrOverloadSetNotDisjoint     = "O0004"
	ErrInconsistentReceiver       = "O0005"
	ErrAmbiguousInheritedOverload = "O0006"
	ErrNotAnOperator              = "O0007"

	// Effect contract violations (E prefix)
	ErrNothrowViolation      = "E0001"
	ErrPurityReadViolation   = "E0002"
	ErrPurityWriteViolation  = "E0003"
	ErrUninitializedUse      = "E0004"
	ErrReassignFinal         = "E0005"
	ErrUseAfterLifetimeEnd   = "E0006"
	ErrLifetimeEndInLoop     = "E0007"
	ErrConflictingBorrow     = "E0008"
	ErrBorrowedValueCaptured = "E0009"
	ErrNotThrowable          = "E0010"
	ErrJumpOutsideLoop       = "E0011"
	ErrMissingReturn         = "E0012"
	ErrMutabilityViolation   = "E0013"

	// Warnings (W prefix)
	WarnUnreachableCode = "W0001"
)
