// Package sqlerr defines the error taxonomy surfaced by the query engine.
//
// Every error carries a Kind and a message whose text is part of the
// observable contract. Callers distinguish bad input from broken internal
// invariants with IsClientError and IsInternal.
package sqlerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies an engine error
type Kind int

const (
	// FormatError is raised when a temporal literal does not match its pattern.
	FormatError Kind = iota + 1
	// TypeAccessError is raised when a value accessor does not fit the value type.
	TypeAccessError
	// FunctionResolutionError is raised when no unique overload matches a call.
	FunctionResolutionError
	// DuplicateRegistration is raised when a signature is registered twice.
	DuplicateRegistration
	// EvaluationError covers deterministic failures while computing a value,
	// such as an unparseable number in a cast.
	EvaluationError
	// RuleApplicationPrecondition is raised when a rule is applied to a node
	// its pattern did not match.
	RuleApplicationPrecondition
	// ContractViolation is raised when an operator is driven outside its
	// pull contract.
	ContractViolation
)

func (k Kind) String() string {
	switch k {
	case FormatError:
		return "FormatError"
	case TypeAccessError:
		return "TypeAccessError"
	case FunctionResolutionError:
		return "FunctionResolutionError"
	case DuplicateRegistration:
		return "DuplicateRegistration"
	case EvaluationError:
		return "EvaluationError"
	case RuleApplicationPrecondition:
		return "RuleApplicationPrecondition"
	case ContractViolation:
		return "ContractViolation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Internal reports whether errors of this kind signal a bug rather than bad input
func (k Kind) Internal() bool {
	return k == RuleApplicationPrecondition || k == ContractViolation
}

// Error is the payload exposed to callers: a kind tag plus a message
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, format string, args ...interface{}) error {
	var err error = &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if kind.Internal() {
		err = errors.WithAssertionFailure(err)
	}
	return errors.WithStackDepth(err, 2)
}

// Format returns a FormatError for a temporal literal
func Format(kind, literal, pattern string) error {
	return newError(FormatError, "%s:%s in unsupported format, please use %s", kind, literal, pattern)
}

// TypeAccess returns a TypeAccessError for the accessor and the actual type name
func TypeAccess(accessor string, actual fmt.Stringer) error {
	return newError(TypeAccessError, "invalid to get %sValue from value of type %s", accessor, actual)
}

// Resolution returns a FunctionResolutionError
func Resolution(name, expected, actual string) error {
	return newError(FunctionResolutionError, "%s function expected %s, but get %s", name, expected, actual)
}

// UnknownFunction returns a FunctionResolutionError for an unregistered name
func UnknownFunction(name string) error {
	return newError(FunctionResolutionError, "unsupported function name %s", name)
}

// Duplicate returns a DuplicateRegistration error
func Duplicate(name, signature string) error {
	return newError(DuplicateRegistration, "duplicate registration of %s%s", name, signature)
}

// Evaluation returns an EvaluationError
func Evaluation(format string, args ...interface{}) error {
	return newError(EvaluationError, format, args...)
}

// RulePrecondition returns a RuleApplicationPrecondition error for rule
func RulePrecondition(rule string, node fmt.Stringer) error {
	return newError(RuleApplicationPrecondition, "rule %s applied to non-matching node %s", rule, node)
}

// Contract returns a ContractViolation error
func Contract(format string, args ...interface{}) error {
	return newError(ContractViolation, format, args...)
}

// KindOf extracts the Kind of err, looking through any wrapping. The second
// result is false when err does not carry an engine error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err carries an engine error of the given kind
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsClientError reports whether err is caused by bad input or a bad query
func IsClientError(err error) bool {
	k, ok := KindOf(err)
	return ok && !k.Internal()
}

// IsInternal reports whether err signals a broken internal invariant
func IsInternal(err error) bool {
	if k, ok := KindOf(err); ok {
		return k.Internal()
	}
	return errors.HasAssertionFailure(err)
}
