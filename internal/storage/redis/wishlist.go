package redis

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/craftline/storefront/internal/domain/wishlist"
)

const wishlistKeyPrefix = "wishlist:"

var _ wishlist.Repository = (*WishlistStore)(nil)

// WishlistStore keeps wishlist membership in a Redis set per user, so adds
// and removes are idempotent under concurrent sessions.
type WishlistStore struct {
	client *redis.Client
}

// NewWishlistStore creates a WishlistStore over the given client.
func NewWishlistStore(client *redis.Client) *WishlistStore {
	return &WishlistStore{client: client}
}

// Add puts the product id into the user's set.
func (s *WishlistStore) Add(ctx context.Context, userID, productID string) error {
	if err := s.client.SAdd(ctx, wishlistKey(userID), productID).Err(); err != nil {
		return errors.Wrap(err, "redis sadd")
	}
	return nil
}

// Remove takes the product id out of the user's set.
func (s *WishlistStore) Remove(ctx context.Context, userID, productID string) error {
	if err := s.client.SRem(ctx, wishlistKey(userID), productID).Err(); err != nil {
		return errors.Wrap(err, "redis srem")
	}
	return nil
}

// Contains reports set membership.
func (s *WishlistStore) Contains(ctx context.Context, userID, productID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, wishlistKey(userID), productID).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis sismember")
	}
	return ok, nil
}

// List returns all product ids in the user's set.
func (s *WishlistStore) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, wishlistKey(userID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis smembers")
	}
	return ids, nil
}

func wishlistKey(userID string) string {
	return wishlistKeyPrefix + userID
}
