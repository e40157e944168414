// Package redis implements the cart snapshot store and wishlist sets on
// Redis. Cart snapshots carry a TTL with jitter so abandoned sessions expire
// without thundering-herd evictions.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/craftline/storefront/internal/domain/cart"
)

const (
	cartKeyPrefix = "cart:"
	baseCartTTL   = 7 * 24 * time.Hour
	cartTTLJitter = 6 * time.Hour
)

var _ cart.SnapshotStore = (*CartSnapshotStore)(nil)

// CartSnapshotStore persists cart state per session as a JSON value.
type CartSnapshotStore struct {
	client *redis.Client
}

// NewCartSnapshotStore creates a CartSnapshotStore over the given client.
func NewCartSnapshotStore(client *redis.Client) *CartSnapshotStore {
	return &CartSnapshotStore{client: client}
}

// Load returns the persisted state for the session, or
// cart.ErrSnapshotNotFound when none exists.
func (s *CartSnapshotStore) Load(ctx context.Context, sessionID string) (*cart.State, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var state cart.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart snapshot")
	}
	return &state, nil
}

// Save persists the state for the session, refreshing the TTL.
func (s *CartSnapshotStore) Save(ctx context.Context, sessionID string, state cart.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal cart snapshot")
	}

	ttl := baseCartTTL + time.Duration(rand.Int63n(int64(cartTTLJitter)))
	if err := s.client.Set(ctx, cartKey(sessionID), data, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Delete removes the session's snapshot. Deleting an absent key is a no-op.
func (s *CartSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}
