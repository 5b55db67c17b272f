package change

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/sightline/internal/entity"
	"github.com/roach88/sightline/internal/testutil"
	"github.com/roach88/sightline/internal/value"
)

const testTenant = "tenant-1"

func namedEntity(id, name string) entity.Entity {
	return testutil.NewEntity(testTenant, "API").
		WithID(id).
		WithName(name).
		WithAttr("FQN", value.Str(name)).
		Build()
}

func newTestReconciler(t *testing.T, opts ...Option) (*Reconciler, *Buffer) {
	t.Helper()
	buf := &Buffer{}
	opts = append([]Option{WithClock(testutil.NewFixedClock(1700000000000))}, opts...)
	return NewReconciler(buf, zaptest.NewLogger(t), opts...), buf
}

func TestReconcileMixedChanges(t *testing.T) {
	r, buf := newTestReconciler(t)

	a := namedEntity("id-a", "a")
	b := namedEntity("id-b", "b")
	c := namedEntity("id-c", "c")

	bPrime := namedEntity("id-b", "b-renamed")
	d := namedEntity("id-d", "d")

	events, err := r.Reconcile(context.Background(), testTenant,
		[]entity.Entity{a, b, c},
		[]entity.Entity{bPrime, d})
	require.NoError(t, err)
	require.Len(t, events, 4)

	created, ok := events[0].(Created)
	require.True(t, ok)
	assert.Equal(t, "id-d", created.Entity.EntityID)

	updated, ok := events[1].(Updated)
	require.True(t, ok)
	assert.Equal(t, "b", updated.Previous.Name)
	assert.Equal(t, "b-renamed", updated.Latest.Name)

	del1, ok := events[2].(Deleted)
	require.True(t, ok)
	assert.Equal(t, "id-a", del1.Entity.EntityID)

	del2, ok := events[3].(Deleted)
	require.True(t, ok)
	assert.Equal(t, "id-c", del2.Entity.EntityID)

	// One clock read covers the whole batch.
	for _, ev := range events {
		assert.Equal(t, int64(1700000000000), ev.EventTimeMillis())
		assert.Equal(t, testTenant, ev.TenantID())
	}

	assert.Equal(t, events, buf.Events())
}

func TestReconcileAllCreated(t *testing.T) {
	r, _ := newTestReconciler(t)

	events, err := r.Reconcile(context.Background(), testTenant,
		nil,
		[]entity.Entity{namedEntity("id-a", "a"), namedEntity("id-b", "b")})
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Created events preserve input order.
	assert.Equal(t, "id-a", events[0].(Created).Entity.EntityID)
	assert.Equal(t, "id-b", events[1].(Created).Entity.EntityID)
}

func TestReconcileAllDeleted(t *testing.T) {
	r, _ := newTestReconciler(t)

	events, err := r.Reconcile(context.Background(), testTenant,
		[]entity.Entity{namedEntity("id-b", "b"), namedEntity("id-a", "a")},
		nil)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Deleted events preserve before order.
	assert.Equal(t, "id-b", events[0].(Deleted).Entity.EntityID)
	assert.Equal(t, "id-a", events[1].(Deleted).Entity.EntityID)
}

func TestReconcileUnchangedStillUpdates(t *testing.T) {
	r, _ := newTestReconciler(t)

	same := namedEntity("id-a", "a")
	events, err := r.Reconcile(context.Background(), testTenant,
		[]entity.Entity{same},
		[]entity.Entity{same})
	require.NoError(t, err)
	require.Len(t, events, 1)

	updated, ok := events[0].(Updated)
	require.True(t, ok)
	assert.True(t, updated.Previous.Equal(updated.Latest))
}

func TestReconcileSkipUnchanged(t *testing.T) {
	r, buf := newTestReconciler(t, WithSkipUnchanged())

	same := namedEntity("id-a", "a")
	changed := namedEntity("id-b", "b")
	changedAfter := namedEntity("id-b", "b-renamed")

	events, err := r.Reconcile(context.Background(), testTenant,
		[]entity.Entity{same, changed},
		[]entity.Entity{same, changedAfter})
	require.NoError(t, err)
	require.Len(t, events, 1)

	updated, ok := events[0].(Updated)
	require.True(t, ok)
	assert.Equal(t, "id-b", updated.Latest.EntityID)
	assert.Len(t, buf.Events(), 1)
}

func TestReconcileEmptyDiffPublishesNothing(t *testing.T) {
	r, buf := newTestReconciler(t)

	events, err := r.Reconcile(context.Background(), testTenant, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Empty(t, buf.Events())
}

func TestReconcileTimestampsTrackClock(t *testing.T) {
	buf := &Buffer{}
	clock := testutil.NewFixedClock(100)
	r := NewReconciler(buf, zaptest.NewLogger(t), WithClock(clock))

	first, err := r.Reconcile(context.Background(), testTenant, nil,
		[]entity.Entity{namedEntity("id-a", "a")})
	require.NoError(t, err)
	assert.Equal(t, int64(100), first[0].EventTimeMillis())

	clock.Advance(50)
	second, err := r.Reconcile(context.Background(), testTenant, nil,
		[]entity.Entity{namedEntity("id-b", "b")})
	require.NoError(t, err)
	assert.Equal(t, int64(150), second[0].EventTimeMillis())
}
