package notification

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/reminders/internal/alert"
	"github.com/aliskhannn/reminders/internal/rabbitmq/queue"
)

type fakePublisher struct {
	published []queue.AlertMessage
	err       error
}

func (f *fakePublisher) Publish(msg queue.AlertMessage, _ retry.Strategy) error {
	if f.err != nil {
		return f.err
	}

	f.published = append(f.published, msg)
	return nil
}

// fakeCache is an in-memory stand-in for the redis wrapper; missing keys
// surface as redis.Nil like the real client.
type fakeCache struct {
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (f *fakeCache) SetWithRetry(_ context.Context, _ retry.Strategy, key string, value interface{}) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeCache) GetWithRetry(_ context.Context, _ retry.Strategy, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}

	return v, nil
}

func testTrigger() alert.Trigger {
	return alert.Trigger{
		ReminderID: uuid.New(),
		Title:      "Standup",
		Body:       "Daily sync",
		At:         time.Now().Add(time.Hour),
		Kind:       alert.KindOnTime,
	}
}

func TestScheduleAndCancel(t *testing.T) {
	pub := &fakePublisher{}
	cache := newFakeCache()
	b := NewBackend(pub, cache)

	ctx := context.Background()
	strategy := retry.Strategy{}

	id, err := b.Schedule(ctx, strategy, testTrigger())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, pub.published, 1)

	status, err := b.Status(ctx, strategy, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	ok, err := b.ShouldFire(ctx, strategy, pub.published[0])
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Cancel(ctx, strategy, id))

	ok, err = b.ShouldFire(ctx, strategy, pub.published[0])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduleWithoutQueueReturnsPlaceholder(t *testing.T) {
	b := NewBackend(nil, newFakeCache())

	id, err := b.Schedule(context.Background(), retry.Strategy{}, testTrigger())
	require.NoError(t, err)
	assert.Equal(t, PlaceholderID, id)
}

func TestCancelNoOps(t *testing.T) {
	cache := newFakeCache()
	b := NewBackend(&fakePublisher{}, cache)

	ctx := context.Background()
	strategy := retry.Strategy{}

	assert.NoError(t, b.Cancel(ctx, strategy, ""))
	assert.NoError(t, b.Cancel(ctx, strategy, PlaceholderID))
	assert.NoError(t, b.Cancel(ctx, strategy, "not-a-uuid"))

	// None of those should have written any state.
	assert.Empty(t, cache.data)
}

func TestCancelAllWatermark(t *testing.T) {
	pub := &fakePublisher{}
	cache := newFakeCache()
	b := NewBackend(pub, cache)

	ctx := context.Background()
	strategy := retry.Strategy{}

	_, err := b.Schedule(ctx, strategy, testTrigger())
	require.NoError(t, err)

	require.NoError(t, b.CancelAll(ctx, strategy))

	ok, err := b.ShouldFire(ctx, strategy, pub.published[0])
	require.NoError(t, err)
	assert.False(t, ok)

	// A trigger enqueued after the watermark still fires.
	_, err = b.Schedule(ctx, strategy, testTrigger())
	require.NoError(t, err)

	ok, err = b.ShouldFire(ctx, strategy, pub.published[1])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMissingStateReadsAsPending(t *testing.T) {
	b := NewBackend(&fakePublisher{}, newFakeCache())

	status, err := b.Status(context.Background(), retry.Strategy{}, uuid.New().String())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
}
