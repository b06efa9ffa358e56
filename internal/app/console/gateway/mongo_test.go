package gateway_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/loader"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestMongo_FetchFlattensDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	older := fx.CreateBooking(ctx, "Ana", "ana@example.com", "pending", -time.Hour)
	newer := fx.CreateBooking(ctx, "Bo", "bo@example.com", "confirmed", 0)

	recs, err := gateway.NewMongo(db).Fetch(ctx, resource.Bookings)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, newer.ID.Hex(), recs[0].ID())
	assert.Equal(t, older.ID.Hex(), recs[1].ID())
	assert.Equal(t, "Bo", recs[0].Str("full_name"))
	_, isTime := recs[0].Time("created_at")
	assert.True(t, isTime)
}

func TestMongo_LoadEveryResource(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateAdmin(ctx, "Root", "root@example.com")
	fx.CreateBooking(ctx, "Ana", "ana@example.com", "pending", 0)
	fx.CreateTripRequest(ctx, "Bo", "bo@example.com", "pending")
	fx.CreateDestination(ctx, "Porto", "PT", 900)
	fx.CreateService(ctx, "Guided tours")
	fx.CreateFAQ(ctx, "Refunds?", "Within 14 days.")
	fx.CreateBlog(ctx, "Ten beaches", "ten-beaches", "published")
	review := fx.CreateReview(ctx, "Cy", "cy@example.com", 5)
	msg := fx.CreateContactMessage(ctx, "Di", "di@example.com", "Visa help")
	fx.CreateSubscriber(ctx, "ed@example.com")

	snap := loader.New(gateway.NewMongo(db), zap.NewNop()).Load(ctx)
	require.Empty(t, snap.Failed())

	for _, spec := range resource.All() {
		if spec.Name == resource.AuditLogs {
			assert.Equal(t, 0, snap.Len(spec.Name))
			continue
		}
		assert.Equal(t, 1, snap.Len(spec.Name), spec.Name)
		rec := snap.Records(spec.Name)[0]
		if spec.StatusField != "" {
			assert.True(t, spec.ValidStatus(rec.Str(spec.StatusField)), spec.Name)
		}
		if spec.ContactField != "" {
			assert.Contains(t, rec.Str(spec.ContactField), "@example.com", spec.Name)
		}
	}

	got, ok := snap.Lookup(resource.Reviews, review.ID.Hex())
	require.True(t, ok)
	assert.Equal(t, "pending", got.Str("status"))
	got, ok = snap.Lookup(resource.ContactMessages, msg.ID.Hex())
	require.True(t, ok)
	assert.Equal(t, "Visa help", got.Str("subject"))
}

func TestMongo_FetchEmptyCollection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	recs, err := gateway.NewMongo(db).Fetch(ctx, resource.Reviews)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMongo_MutationsAndErrorKinds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	b := fx.CreateBooking(ctx, "Ana", "ana@example.com", "pending", 0)
	gw := gateway.NewMongo(db)
	id := b.ID.Hex()

	rec, err := gw.Transition(ctx, resource.Bookings, id, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", rec.Str("status"))

	rec, err = gw.Update(ctx, resource.Bookings, id, gateway.Patch{"travelers": 3})
	require.NoError(t, err)
	assert.EqualValues(t, 3, rec["travelers"])

	_, err = gw.Transition(ctx, resource.Bookings, id, "lost")
	assert.Equal(t, gateway.KindValidation, gateway.KindOf(err))

	_, err = gw.Update(ctx, resource.Bookings, "not-an-id", gateway.Patch{"travelers": 1})
	assert.ErrorIs(t, err, gateway.ErrValidation)

	err = gw.Delete(ctx, resource.Bookings, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	require.NoError(t, gw.Delete(ctx, resource.Bookings, id))
	recs, err := gw.Fetch(ctx, resource.Bookings)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMongo_CreateRespectsCapabilities(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gw := gateway.NewMongo(db)
	rec, err := gw.Create(ctx, resource.FAQs, gateway.Record{"id": "client-chosen", "question": "Visas?"})
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", rec.ID())

	_, err = gw.Create(ctx, resource.Bookings, gateway.Record{"full_name": "Ana"})
	assert.ErrorIs(t, err, gateway.ErrUnsupported)
}

func TestMongo_CanceledContextIsNetwork(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gateway.NewMongo(db).Fetch(ctx, resource.Users)
	assert.ErrorIs(t, err, gateway.ErrNetwork)
}
