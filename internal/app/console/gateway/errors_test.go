package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

func TestError_UnwrapsToKindAndCause(t *testing.T) {
	cause := errors.New("E11000 duplicate key")
	err := gateway.NewError(gateway.KindValidation, resource.Users, resource.OpUpdate, "u1", cause)

	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, gateway.ErrNetwork)
	assert.Equal(t, "update users/u1: validation: E11000 duplicate key", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, gateway.KindNotFound, gateway.KindOf(gateway.NewError(gateway.KindNotFound, resource.Bookings, resource.OpDelete, "b", nil)))
	assert.Equal(t, gateway.KindNetwork, gateway.KindOf(context.DeadlineExceeded))
}

func TestMessage(t *testing.T) {
	assert.Empty(t, gateway.Message(nil))
	assert.Equal(t, "record no longer exists",
		gateway.Message(gateway.NewError(gateway.KindNotFound, resource.Bookings, resource.OpDelete, "b", nil)))
	assert.Contains(t, gateway.Message(gateway.NewError(gateway.KindPermission, resource.Users, resource.OpDelete, "u", nil)), "permission")
	assert.Equal(t, "invalid status \"x\"",
		gateway.Message(gateway.CheckStatus(mustSpec(t, resource.Bookings), "b", "x")))
}

func TestCheck(t *testing.T) {
	_, err := gateway.Check("nope", resource.OpDelete, "1")
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	_, err = gateway.Check(resource.AuditLogs, resource.OpDelete, "1")
	assert.ErrorIs(t, err, gateway.ErrUnsupported)
	assert.ErrorIs(t, err, gateway.ErrValidation)

	spec, err := gateway.Check(resource.Users, resource.OpUpdate, "1")
	assert.NoError(t, err)
	assert.ErrorIs(t, gateway.CheckPatch(spec, "1", gateway.Patch{}), gateway.ErrValidation)
	assert.ErrorIs(t, gateway.CheckPatch(spec, "1", gateway.Patch{"status": "x"}), gateway.ErrValidation)
	assert.NoError(t, gateway.CheckPatch(spec, "1", gateway.Patch{"email": "a@b.c"}))

	_, err = gateway.CheckFetch(resource.AuditLogs)
	assert.NoError(t, err)
}

func mustSpec(t *testing.T, name resource.Name) resource.Spec {
	t.Helper()
	spec, ok := resource.Lookup(name)
	if !ok {
		t.Fatalf("unknown resource %s", name)
	}
	return spec
}
