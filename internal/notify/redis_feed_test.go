package notify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-sharad/e-com-sub000/internal/customers"
)

func newFeed(t *testing.T) (*RedisFeed, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFeed(client), mr
}

func TestRedisFeedFiltersByEmail(t *testing.T) {
	feed, _ := newFeed(t)
	ctx := context.Background()

	var scoped, all atomic.Int32
	stopScoped, err := feed.Subscribe(customers.CollectionOrders, customers.ChangeFilter{Email: "a@x.com"}, func() { scoped.Add(1) })
	require.NoError(t, err)
	stopAll, err := feed.Subscribe(customers.CollectionOrders, customers.ChangeFilter{}, func() { all.Add(1) })
	require.NoError(t, err)
	defer stopAll()

	require.NoError(t, feed.Notify(ctx, customers.CollectionOrders, "b@x.com"))
	require.NoError(t, feed.Notify(ctx, customers.CollectionOrders, " A@X.com "))
	require.NoError(t, feed.Notify(ctx, customers.CollectionProfiles, "a@x.com"))
	require.NoError(t, feed.Notify(ctx, customers.CollectionOrders, ""))

	require.Eventually(t, func() bool { return all.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return scoped.Load() == 2 }, 2*time.Second, 5*time.Millisecond)

	stopScoped()
	require.NoError(t, feed.Notify(ctx, customers.CollectionOrders, "a@x.com"))
	require.Eventually(t, func() bool { return all.Load() == 4 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), scoped.Load())
}

func TestRedisFeedSubscribeFailsWhenUnreachable(t *testing.T) {
	feed, mr := newFeed(t)
	mr.Close()

	_, err := feed.Subscribe(customers.CollectionProfiles, customers.ChangeFilter{}, func() {})
	assert.ErrorIs(t, err, customers.ErrSourceUnavailable)
	assert.Error(t, feed.Ping(context.Background()))
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "customers:changes:orders", Channel(customers.CollectionOrders))
}
