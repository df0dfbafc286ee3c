package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCartRepository stores priced cart snapshots as JSON, keyed by the
// guest session token and expiring with the cart TTL.
type RedisCartRepository struct {
	client redis.UniversalClient
}

func NewRedisCartRepository(client redis.UniversalClient) *RedisCartRepository {
	return &RedisCartRepository{
		client: client,
	}
}

func cartKey(sessionToken string) string {
	return "cart:" + sessionToken
}

func (r *RedisCartRepository) Set(ctx context.Context, sessionToken string, cart domain.Cart, ttl time.Duration) error {
	payload, err := json.Marshal(cartPayload{
		Id:   cart.Id,
		Cart: cart,
	})
	if err != nil {
		return err
	}

	return r.client.Set(ctx, cartKey(sessionToken), payload, ttl).Err()
}

func (r *RedisCartRepository) Get(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	raw, err := r.client.Get(ctx, cartKey(sessionToken)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	var payload cartPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	cart := payload.Cart
	cart.Id = payload.Id

	return &cart, nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, sessionToken string) error {
	return r.client.Del(ctx, cartKey(sessionToken)).Err()
}

// cartPayload re-adds the cart id, which domain.Cart hides from JSON.
type cartPayload struct {
	Id   string `json:"id"`
	Cart domain.Cart
}
