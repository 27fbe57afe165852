package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []Change
	done := make(chan error, 1)
	go func() {
		done <- Subscribe(ctx, client, "orders_changes", func(_ context.Context, c Change) {
			mu.Lock()
			got = append(got, c)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("orders_changes")) == 1
	}, time.Second, 5*time.Millisecond)

	pub := NewPublisher(client, "orders_changes")
	require.NoError(t, pub.Publish(ctx, Change{Table: "orders", Event: EventUpdate, ID: 7}))
	mr.Publish("orders_changes", "not json")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "orders", got[0].Table)
	assert.Equal(t, int64(7), got[0].ID)
	assert.False(t, got[0].At.IsZero())
	assert.Equal(t, Change{}, got[1])
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop")
	}
}
