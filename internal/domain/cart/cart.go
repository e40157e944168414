// Package cart holds the session shopping cart: an ordered collection of
// product/quantity lines with derived item count and subtotal. The cart is
// owned by exactly one session; persistence is delegated to a SnapshotStore.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/craftline/storefront/internal/domain/product"
)

// InvalidQuantityError indicates an add or update with a quantity below 1.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s, got %d", e.ProductID, e.Quantity)
}

// Line is one product-and-quantity pair in the cart. Lines are created on
// first add, merged on repeated adds, and removed when the quantity would
// drop below 1.
type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Total returns the line total: effective unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the full cart contents. ItemCount and Subtotal are always derived
// from Lines; there is no independent source of truth to drift from.
type State struct {
	Lines []Line `json:"lines"`
}

// ItemCount returns the sum of line quantities.
func (s State) ItemCount() int {
	count := 0
	for _, l := range s.Lines {
		count += l.Quantity
	}
	return count
}

// Subtotal returns the sum of line totals.
func (s State) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range s.Lines {
		subtotal = subtotal.Add(l.Total())
	}
	return subtotal
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Clone returns a deep copy of the state so callers cannot mutate the
// store's lines through a returned snapshot.
func (s State) Clone() State {
	lines := make([]Line, len(s.Lines))
	copy(lines, s.Lines)
	return State{Lines: lines}
}

// indexOf returns the position of the line for the given product id, or -1.
func (s State) indexOf(productID string) int {
	for i, l := range s.Lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
