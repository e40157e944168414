package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/craftline/storefront/internal/domain/product"
)

// ErrSnapshotNotFound is returned by SnapshotStore implementations when no
// snapshot exists for a session. The service treats it as an empty cart.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// SnapshotStore persists cart state per session. Implementations must make
// Save followed by Load a round-trip: the loaded state equals the saved one.
type SnapshotStore interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

// Service applies cart operations for a session: it restores the snapshot,
// applies the mutation, and persists the result. Writes are last-write-wins
// per session; a session has one logical writer.
type Service struct {
	snapshots SnapshotStore
}

// NewService creates a cart Service backed by the given snapshot store.
func NewService(snapshots SnapshotStore) *Service {
	return &Service{snapshots: snapshots}
}

// Get returns the current cart state for the session, empty when no
// snapshot exists yet.
func (s *Service) Get(ctx context.Context, sessionID string) (State, error) {
	state, err := s.snapshots.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return State{}, nil
		}
		return State{}, errors.Wrap(err, "load cart snapshot")
	}
	return *state, nil
}

// AddItem adds quantity units of the product to the session cart.
func (s *Service) AddItem(ctx context.Context, sessionID string, p product.Product, quantity int) (State, error) {
	return s.mutate(ctx, sessionID, func(st *Store) error {
		return st.AddItem(p, quantity)
	})
}

// RemoveItem deletes the product's line from the session cart.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (State, error) {
	return s.mutate(ctx, sessionID, func(st *Store) error {
		st.RemoveItem(productID)
		return nil
	})
}

// UpdateQuantity sets the product's line quantity; below 1 removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (State, error) {
	return s.mutate(ctx, sessionID, func(st *Store) error {
		st.UpdateQuantity(productID, quantity)
		return nil
	})
}

// Clear empties the session cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.snapshots.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "delete cart snapshot")
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, sessionID string, op func(*Store) error) (State, error) {
	store := NewStore()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	store.Restore(state)

	if err := op(store); err != nil {
		return State{}, err
	}

	next := store.State()
	if err := s.snapshots.Save(ctx, sessionID, next); err != nil {
		return State{}, errors.Wrap(err, "save cart snapshot")
	}
	return next, nil
}
