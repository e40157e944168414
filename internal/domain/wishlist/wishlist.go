// Package wishlist tracks product membership per user with set semantics:
// add and remove are idempotent, so concurrent sessions cannot introduce
// duplicates or lose removals.
package wishlist

import (
	"context"

	"github.com/go-faster/errors"
)

// Repository stores wishlist membership as a set of product ids per user.
type Repository interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	Contains(ctx context.Context, userID, productID string) (bool, error)
	List(ctx context.Context, userID string) ([]string, error)
}

// Service exposes wishlist operations over a Repository.
type Service struct {
	repo Repository
}

// NewService creates a wishlist Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add puts the product on the user's wishlist. Adding an already-present
// product is a no-op.
func (s *Service) Add(ctx context.Context, userID, productID string) error {
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		return errors.Wrap(err, "add wishlist item")
	}
	return nil
}

// Remove takes the product off the user's wishlist. Removing an absent
// product is a no-op.
func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return errors.Wrap(err, "remove wishlist item")
	}
	return nil
}

// Contains reports whether the product is on the user's wishlist.
func (s *Service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	ok, err := s.repo.Contains(ctx, userID, productID)
	if err != nil {
		return false, errors.Wrap(err, "check wishlist item")
	}
	return ok, nil
}

// List returns the product ids on the user's wishlist.
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist")
	}
	return ids, nil
}
