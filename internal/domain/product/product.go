package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog entry available for purchase. The catalog owns
// products; the cart and order packages treat them as read-only.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	// DiscountPrice, when set, must be less than or equal to Price.
	DiscountPrice *decimal.Decimal
	Currency      string
	Stock         int
	Category      string
	Rating        float64
	ReviewCount   int
}

// EffectivePrice returns the discounted price when one is set, otherwise the
// base price. All pricing flows through this single accessor.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// Filter narrows catalog listings.
type Filter struct {
	Category string
	// InStock limits results to products with available stock.
	InStock bool
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
