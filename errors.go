package hxres

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for pipeline operations.
var (
	ErrUnsupportedOperation = errors.New("hxres: unsupported operation")
	ErrValidation           = errors.New("hxres: invalid resource")
	ErrMissingAccessor      = errors.New("hxres: missing accessor")
	ErrUnknownFormat        = errors.New("hxres: unknown format")
	ErrNoMapper             = errors.New("hxres: no mapper")
	ErrNotFound             = errors.New("hxres: resource not found")
)

// UnsupportedOperationError is returned when a mutator is invoked on a node
// that cannot support it, such as any update on a NullResource.
type UnsupportedOperationError struct {
	Op     string
	Target string
	Detail string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("operation %s not supported on %s", e.Op, e.Target)
}

func (e *UnsupportedOperationError) Unwrap() error { return ErrUnsupportedOperation }

// ValidationError is returned when a resource is built from malformed data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MissingAccessorError is returned when a mapping rule names an attribute or
// association the mapped value does not expose.
type MissingAccessorError struct {
	Name string
	Type string
}

func (e *MissingAccessorError) Error() string {
	return fmt.Sprintf("%s has no accessor %q", e.Type, e.Name)
}

func (e *MissingAccessorError) Unwrap() error { return ErrMissingAccessor }

func unsupported(op, target string) error {
	return &UnsupportedOperationError{Op: op, Target: target}
}

// IsUnsupportedOperation checks if err is an unsupported-operation error.
func IsUnsupportedOperation(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}

// IsValidation checks if err is a resource validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsMissingAccessor checks if err reports an absent attribute or association.
func IsMissingAccessor(err error) bool {
	return errors.Is(err, ErrMissingAccessor)
}

// IsUnknownFormat checks if err is a format configuration error.
func IsUnknownFormat(err error) bool {
	return errors.Is(err, ErrUnknownFormat)
}

// IsNoMapper checks if err reports a value without a registered mapper.
func IsNoMapper(err error) bool {
	return errors.Is(err, ErrNoMapper)
}

// IsNotFound checks if err is a not-found error returned by a loader.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
