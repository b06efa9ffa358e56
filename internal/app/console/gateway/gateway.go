// internal/app/console/gateway/gateway.go

// Package gateway is the console's only path to the persistence
// collaborator. Each call is one independent remote operation that either
// succeeds or fails with a typed *Error; an empty collection is a valid
// result, never an error.
package gateway

import (
	"context"
	"fmt"

	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

// Gateway exposes one fetch and a resource-specific set of mutations per
// resource. Implementations must not issue implicit follow-up reads.
type Gateway interface {
	Fetch(ctx context.Context, name resource.Name) ([]Record, error)
	Create(ctx context.Context, name resource.Name, data Record) (Record, error)
	Update(ctx context.Context, name resource.Name, id string, patch Patch) (Record, error)
	Delete(ctx context.Context, name resource.Name, id string) error
	Transition(ctx context.Context, name resource.Name, id, status string) (Record, error)
}

// Check resolves name and verifies op is declared for it. Implementations
// call it before touching storage so unsupported operations never reach
// the collaborator.
func Check(name resource.Name, op resource.Op, id string) (resource.Spec, error) {
	spec, ok := resource.Lookup(name)
	if !ok {
		return resource.Spec{}, newError(KindNotFound, name, op, id, fmt.Errorf("unknown resource %q", name))
	}
	if !spec.Supports(op) {
		return spec, newError(KindValidation, name, op, id, ErrUnsupported)
	}
	return spec, nil
}

// CheckPatch verifies every patched field is inline-editable.
func CheckPatch(spec resource.Spec, id string, patch Patch) error {
	if len(patch) == 0 {
		return newError(KindValidation, spec.Name, resource.OpUpdate, id, fmt.Errorf("empty patch"))
	}
	for field := range patch {
		if !spec.CanEdit(field) {
			return newError(KindValidation, spec.Name, resource.OpUpdate, id, fmt.Errorf("field %q is not editable", field))
		}
	}
	return nil
}

// CheckStatus verifies status is a declared value for spec.
func CheckStatus(spec resource.Spec, id, status string) error {
	if !spec.ValidStatus(status) {
		return newError(KindValidation, spec.Name, resource.OpTransition, id, fmt.Errorf("invalid status %q", status))
	}
	return nil
}

// CheckFetch resolves name for a read. Every registered resource is readable.
func CheckFetch(name resource.Name) (resource.Spec, error) {
	spec, ok := resource.Lookup(name)
	if !ok {
		return resource.Spec{}, newError(KindNotFound, name, OpFetch, "", fmt.Errorf("unknown resource %q", name))
	}
	return spec, nil
}

// OpFetch labels read failures in *Error.
const OpFetch resource.Op = "fetch"
