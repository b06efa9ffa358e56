package memgateway_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/gateway/memgateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

func TestGateway_CRUD(t *testing.T) {
	ctx := context.Background()
	gw := memgateway.New()

	created, err := gw.Create(ctx, resource.FAQs, gateway.Record{"question": "Visa?", "answer": "Yes"})
	require.NoError(t, err)
	id := created.ID()
	require.NotEmpty(t, id)

	updated, err := gw.Update(ctx, resource.FAQs, id, gateway.Patch{"answer": "Sometimes"})
	require.NoError(t, err)
	assert.Equal(t, "Sometimes", updated["answer"])

	recs, err := gw.Fetch(ctx, resource.FAQs)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	recs[0]["answer"] = "mutated"
	again, _ := gw.Fetch(ctx, resource.FAQs)
	assert.Equal(t, "Sometimes", again[0]["answer"], "fetch returns copies")

	require.NoError(t, gw.Delete(ctx, resource.FAQs, id))
	assert.ErrorIs(t, gw.Delete(ctx, resource.FAQs, id), gateway.ErrNotFound)
	assert.Empty(t, gw.IDs(resource.FAQs))
}

func TestGateway_EmptyResourceIsNotAnError(t *testing.T) {
	recs, err := memgateway.New().Fetch(context.Background(), resource.Reviews)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestGateway_CapabilityChecks(t *testing.T) {
	ctx := context.Background()
	gw := memgateway.New()
	gw.Seed(resource.ContactMessages, gateway.Record{"id": "m1", "status": "new"})

	_, err := gw.Update(ctx, resource.ContactMessages, "m1", gateway.Patch{"status": "read"})
	assert.ErrorIs(t, err, gateway.ErrUnsupported)

	_, err = gw.Transition(ctx, resource.ContactMessages, "m1", "archived")
	assert.ErrorIs(t, err, gateway.ErrValidation)

	rec, err := gw.Transition(ctx, resource.ContactMessages, "m1", "read")
	require.NoError(t, err)
	assert.Equal(t, "read", rec["status"])

	assert.Equal(t, 1, gw.Calls(resource.OpUpdate))
	assert.Equal(t, 2, gw.Calls(resource.OpTransition))
}

func TestGateway_FaultInjection(t *testing.T) {
	ctx := context.Background()
	gw := memgateway.New()
	gw.Seed(resource.Users, gateway.Record{"id": "u1"})

	gw.FailFetch(resource.Users, gateway.KindPermission)
	_, err := gw.Fetch(ctx, resource.Users)
	assert.ErrorIs(t, err, gateway.ErrPermission)
	gw.FailFetch(resource.Users, "")
	_, err = gw.Fetch(ctx, resource.Users)
	assert.NoError(t, err)

	gw.FailRecord(resource.Users, "u1", gateway.KindNetwork)
	err = gw.Delete(ctx, resource.Users, "u1")
	assert.ErrorIs(t, err, gateway.ErrNetwork)
	var ge *gateway.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, resource.OpDelete, ge.Op)
	assert.Equal(t, []string{"u1"}, gw.IDs(resource.Users))
}

func TestGateway_BlockFetches(t *testing.T) {
	gw := memgateway.New()
	release := gw.BlockFetches()

	done := make(chan error, 1)
	go func() {
		_, err := gw.Fetch(context.Background(), resource.Blogs)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("fetch returned while blocked")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	release() // idempotent
	require.NoError(t, <-done)

	ctx, cancel := context.WithCancel(context.Background())
	gw.BlockFetches()
	cancel()
	_, err := gw.Fetch(ctx, resource.Blogs)
	assert.ErrorIs(t, err, gateway.ErrNetwork)
}
