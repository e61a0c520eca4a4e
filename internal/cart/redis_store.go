package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/angelmondragon/farmstore/pkg/redis"
)

// keyValue is satisfied by *pkgredis.Client.
type keyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(owner string) string
}

// RedisStore keeps each cart as one JSON document with a sliding TTL.
type RedisStore struct {
	kv  keyValue
	ttl time.Duration
}

func NewRedisStore(kv keyValue, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, owner string) (Cart, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(owner))
	if errors.Is(err, pkgredis.ErrNotFound) {
		return Cart{Owner: owner}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	cart.Owner = owner
	return cart, nil
}

func (s *RedisStore) Save(ctx context.Context, cart Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.kv.Set(ctx, s.kv.CartKey(cart.Owner), string(payload), s.ttl)
}

func (s *RedisStore) Clear(ctx context.Context, owner string) error {
	return s.kv.Del(ctx, s.kv.CartKey(owner))
}
