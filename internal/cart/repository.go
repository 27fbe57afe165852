package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository stores carts as JSON blobs under cart:<id> with a sliding TTL.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRepository(client *redis.Client, ttl time.Duration) *Repository {
	return &Repository{
		client: client,
		ttl:    ttl,
	}
}

func (r *Repository) key(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}

func (r *Repository) Get(ctx context.Context, cartID string) (*Cart, error) {
	data, err := r.client.Get(ctx, r.key(cartID)).Result()
	if err == redis.Nil {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	var c Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", cartID, err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return &c, nil
}

// GetOrNew returns the stored cart, or an empty one with the given id.
func (r *Repository) GetOrNew(ctx context.Context, cartID string) (*Cart, error) {
	c, err := r.Get(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		return New(cartID), nil
	}
	return c, err
}

func (r *Repository) Save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now()

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(c.ID), data, r.ttl).Err()
}

func (r *Repository) Delete(ctx context.Context, cartID string) error {
	return r.client.Del(ctx, r.key(cartID)).Err()
}
