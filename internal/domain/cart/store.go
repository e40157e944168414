package cart

import (
	"github.com/craftline/storefront/internal/domain/product"
)

// Store is the in-memory cart for a single session. It is not safe for
// concurrent use: each session has exactly one logical writer, and the
// surrounding service serializes access per session.
type Store struct {
	state State
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Restore replaces the store contents with a previously persisted state.
func (s *Store) Restore(state State) {
	s.state = state.Clone()
}

// State returns a copy of the current cart contents.
func (s *Store) State() State {
	return s.state.Clone()
}

// AddItem adds quantity units of the product to the cart. If a line for the
// product already exists its quantity is increased, otherwise a new line is
// appended, so the cart never holds two lines for the same product id.
func (s *Store) AddItem(p product.Product, quantity int) error {
	if quantity < 1 {
		return &InvalidQuantityError{ProductID: p.ID, Quantity: quantity}
	}

	if i := s.state.indexOf(p.ID); i >= 0 {
		s.state.Lines[i].Quantity += quantity
		return nil
	}

	s.state.Lines = append(s.state.Lines, Line{Product: p, Quantity: quantity})
	return nil
}

// RemoveItem deletes the line for the given product id. Removing an absent
// product is a no-op, not an error.
func (s *Store) RemoveItem(productID string) {
	i := s.state.indexOf(productID)
	if i < 0 {
		return
	}
	s.state.Lines = append(s.state.Lines[:i], s.state.Lines[i+1:]...)
}

// UpdateQuantity replaces the quantity of the line for the given product id.
// A quantity below 1 behaves as RemoveItem. Updating an absent product is a
// no-op.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(productID)
		return
	}
	if i := s.state.indexOf(productID); i >= 0 {
		s.state.Lines[i].Quantity = quantity
	}
}

// Clear empties all lines.
func (s *Store) Clear() {
	s.state = State{}
}
