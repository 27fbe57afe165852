// Package realtime carries row-change notifications over Redis pub/sub.
// Subscribers treat any message as "something changed" and resync.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rjpc/storefront/internal/logger"
	"go.uber.org/zap"
)

const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Change describes one write to a table.
type Change struct {
	Table string    `json:"table"`
	Event string    `json:"event"`
	ID    int64     `json:"id"`
	At    time.Time `json:"at"`
}

type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, ch Change) error {
	if ch.At.IsZero() {
		ch.At = time.Now()
	}
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscribe calls fn for every message on channel until ctx is cancelled.
// Payloads that do not decode still trigger fn with a zero Change, since the
// only contract is "refetch".
func Subscribe(ctx context.Context, client *redis.Client, channel string, fn func(context.Context, Change)) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before reading.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	logger.Info(ctx, "Realtime subscription started", zap.String("channel", channel))

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Realtime subscription stopped", zap.String("channel", channel))
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				logger.Warn(ctx, "Undecodable change notification", zap.String("payload", msg.Payload), zap.Error(err))
			}
			fn(ctx, change)
		}
	}
}
