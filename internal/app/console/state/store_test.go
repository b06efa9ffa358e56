package state_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/loader"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/console/state"
)

var t0 = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func bookings() []gateway.Record {
	return []gateway.Record{
		{"id": "k1", "full_name": "Ana Lima", "email": "ana@example.com", "status": "pending", "created_at": t0},
		{"id": "k2", "full_name": "Bo Berg", "email": "bo@example.com", "status": "confirmed", "created_at": t0.Add(time.Hour)},
		{"id": "k3", "full_name": "Zoë Ana", "email": "zoe@example.com", "status": "pending", "created_at": t0.Add(2 * time.Hour)},
		{"id": "k4", "full_name": "No Date", "email": "nd@example.com", "status": "cancelled"},
	}
}

func snap(seq uint64, recs ...gateway.Record) *loader.Snapshot {
	return loader.NewSnapshot(seq, t0.Add(time.Duration(seq)*time.Minute), map[resource.Name][]gateway.Record{
		resource.Bookings: recs,
		resource.Users:    {{"id": "u1", "full_name": "Admin", "status": "active"}},
	})
}

func newStore(t *testing.T) *state.Store {
	t.Helper()
	s, err := state.New(resource.Bookings)
	require.NoError(t, err)
	require.True(t, s.ReplaceSnapshot(snap(1, bookings()...)))
	return s
}

func TestNew_UnknownView(t *testing.T) {
	_, err := state.New("nope")
	assert.ErrorIs(t, err, state.ErrUnknownView)
}

func TestVisibleRecords_SortedNewestFirst(t *testing.T) {
	s := newStore(t)
	assert.Equal(t, []string{"k3", "k2", "k1", "k4"}, s.VisibleIDs(resource.Bookings))
}

func TestVisibleRecords_FilterSearchAndStatus(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Search: "ana"}))
	assert.Equal(t, []string{"k3", "k1"}, s.VisibleIDs(resource.Bookings), "search folds case and diacritics")

	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Search: "ana", Status: "Pending"}))
	assert.Equal(t, []string{"k3", "k1"}, s.VisibleIDs(resource.Bookings))

	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Search: "bo", Status: "pending"}))
	assert.Empty(t, s.VisibleIDs(resource.Bookings), "search AND status")

	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Status: state.StatusAll}))
	assert.Len(t, s.VisibleIDs(resource.Bookings), 4)
	assert.True(t, s.Filter(resource.Bookings).IsZero())
}

func TestSelectAll_OnlyVisible(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Status: "pending"}))

	assert.Equal(t, 2, s.SelectAll())
	assert.Equal(t, 2, s.SelectionCount())
	assert.False(t, s.IsSelected("k2"))
	assert.True(t, s.SelectionValid())
}

func TestToggle_IgnoresHiddenIDs(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Status: "confirmed"}))

	assert.False(t, s.Toggle("k1"))
	assert.Zero(t, s.SelectionCount())
	assert.True(t, s.Toggle("k2"))
	assert.False(t, s.Toggle("k2"))
}

func TestSelection_ClearedByFilterOrViewChange(t *testing.T) {
	s := newStore(t)
	s.SelectAll()
	require.NotZero(t, s.SelectionCount())

	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Search: " "}))
	assert.NotZero(t, s.SelectionCount(), "an equivalent filter is not a change")

	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Search: "bo"}))
	assert.Zero(t, s.SelectionCount())

	s.SelectAll()
	require.NoError(t, s.SetFilter(resource.Users, state.Filter{Search: "x"}))
	assert.NotZero(t, s.SelectionCount(), "filtering another view keeps the selection")

	require.NoError(t, s.SetActiveView(resource.Users))
	assert.Zero(t, s.SelectionCount())
	view, _ := s.Selection()
	assert.Equal(t, resource.Users, view)
	assert.ErrorIs(t, s.SetActiveView("nope"), state.ErrUnknownView)
	assert.Equal(t, "bo", s.Filter(resource.Bookings).Search, "filters survive a view switch")
}

func TestReplaceSnapshot_PrunesSelectionKeepsView(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SetFilter(resource.Bookings, state.Filter{Status: "pending"}))
	s.SelectAll()

	recs := bookings()
	recs[0]["status"] = "confirmed" // k1 no longer matches the filter
	require.True(t, s.ReplaceSnapshot(snap(2, recs...)))

	assert.Equal(t, resource.Bookings, s.ActiveView())
	assert.Equal(t, "pending", s.Filter(resource.Bookings).Status)
	_, ids := s.Selection()
	assert.Equal(t, []string{"k3"}, ids)
	assert.True(t, s.SelectionValid())
	assert.Equal(t, t0.Add(2*time.Minute), s.LastRefreshed())

	recs2 := bookings()[1:] // k1 deleted
	require.True(t, s.ReplaceSnapshot(snap(3, recs2...)))
	assert.Len(t, s.SelectedRecords(), 1)
}

func TestBulkTarget_IDsAndRecordsAgree(t *testing.T) {
	s := newStore(t)
	require.Equal(t, 4, s.SelectAll())

	tgt := s.BulkTarget()
	assert.True(t, tgt.Valid)
	assert.Equal(t, resource.Bookings, tgt.Resource)
	require.Len(t, tgt.Records, len(tgt.IDs))
	for i, id := range tgt.IDs {
		assert.Equal(t, id, tgt.Records[i].ID())
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for seq := uint64(2); seq < 200; seq++ {
			recs := bookings()
			if seq%2 == 0 {
				recs = recs[:2]
			}
			s.SelectAll()
			s.ReplaceSnapshot(snap(seq, recs...))
		}
	}()
	for i := 0; i < 200; i++ {
		tgt := s.BulkTarget()
		require.Len(t, tgt.Records, len(tgt.IDs), "ids and records come from one snapshot")
		for j, id := range tgt.IDs {
			require.Equal(t, id, tgt.Records[j].ID())
		}
		assert.True(t, tgt.Valid)
	}
	wg.Wait()
}

func TestReplaceSnapshot_IgnoresOlder(t *testing.T) {
	s := newStore(t)
	require.True(t, s.ReplaceSnapshot(snap(5, bookings()[:1]...)))
	assert.False(t, s.ReplaceSnapshot(snap(4, bookings()...)))
	assert.False(t, s.ReplaceSnapshot(nil))
	assert.EqualValues(t, 5, s.Snapshot().Seq())
	assert.Len(t, s.VisibleRecords(resource.Bookings), 1)
}

func TestOverview(t *testing.T) {
	s := newStore(t)
	ov := s.Overview()
	assert.Equal(t, 4, ov.Totals[resource.Bookings])
	assert.Equal(t, 0, ov.Totals[resource.Reviews])
	assert.Equal(t, map[string]int{"pending": 2, "confirmed": 1, "cancelled": 1, "completed": 0}, ov.ByStatus[resource.Bookings])
	assert.NotContains(t, ov.ByStatus, resource.Destinations)
	assert.Empty(t, ov.Failed)
}
