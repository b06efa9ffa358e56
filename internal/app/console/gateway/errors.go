// internal/app/console/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"

	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

// Kind classifies a gateway failure.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindPermission Kind = "permission"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
)

var (
	ErrNetwork    = errors.New("remote service unreachable")
	ErrPermission = errors.New("permission denied")
	ErrValidation = errors.New("rejected as invalid")
	ErrNotFound   = errors.New("record not found")

	// ErrUnsupported is wrapped (as a validation failure) when a resource
	// does not declare the requested mutation.
	ErrUnsupported = errors.New("operation not supported for resource")
)

// Error is the single error type returned by Gateway implementations.
// It unwraps to both its kind sentinel and the underlying cause.
type Error struct {
	Kind     Kind
	Resource resource.Name
	Op       resource.Op
	ID       string
	Err      error
}

func newError(kind Kind, name resource.Name, op resource.Op, id string, err error) *Error {
	return &Error{Kind: kind, Resource: name, Op: op, ID: id, Err: err}
}

// NewError builds a typed gateway error. Exported for alternate
// Gateway implementations.
func NewError(kind Kind, name resource.Name, op resource.Op, id string, err error) *Error {
	return newError(kind, name, op, id, err)
}

func (e *Error) Error() string {
	target := string(e.Resource)
	if e.ID != "" {
		target += "/" + e.ID
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, target, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, target, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	out := []error{sentinel(e.Kind)}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func sentinel(k Kind) error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindPermission:
		return ErrPermission
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrValidation
	}
}

// KindOf returns the kind of err, or KindNetwork for errors that did not
// come from a gateway (context deadlines, transport failures).
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindNetwork
}

// Message renders err for an operator: short, without wrapping noise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ge *Error
	if !errors.As(err, &ge) {
		return err.Error()
	}
	switch ge.Kind {
	case KindNotFound:
		return "record no longer exists"
	case KindPermission:
		return "you do not have permission to change this record"
	case KindNetwork:
		return "the data service could not be reached; try again"
	}
	if ge.Err != nil {
		return ge.Err.Error()
	}
	return "rejected as invalid"
}
