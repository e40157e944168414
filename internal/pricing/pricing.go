// Package pricing computes monetary totals for a cart: line totals, subtotal,
// tax, shipping, and grand total. Every function is pure and deterministic;
// amounts stay unrounded here and are rounded only at the presentation
// boundary to avoid compounding rounding error.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/craftline/storefront/internal/domain/cart"
)

// InvalidCartError indicates totals were requested over a malformed cart,
// such as one holding a line with a quantity below 1.
type InvalidCartError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidCartError) Error() string {
	return fmt.Sprintf("invalid cart: product %s has quantity %d", e.ProductID, e.Quantity)
}

// RateConfig is the jurisdiction-specific rate table.
type RateConfig struct {
	// TaxRate is a fraction, e.g. 0.18 for 18%.
	TaxRate decimal.Decimal
	// FreeShippingThreshold is the subtotal above which (strictly) shipping
	// is free.
	FreeShippingThreshold decimal.Decimal
	// FlatShippingFee is charged when the subtotal does not clear the
	// threshold.
	FlatShippingFee decimal.Decimal
}

// Totals holds the computed amounts for one cart, frozen into the order at
// checkout time.
type Totals struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Engine evaluates a RateConfig over cart states.
type Engine struct {
	cfg RateConfig
}

// NewEngine creates an Engine with the given rate table.
func NewEngine(cfg RateConfig) Engine {
	return Engine{cfg: cfg}
}

// LineTotal returns effective unit price times quantity for one line.
func LineTotal(l cart.Line) decimal.Decimal {
	return l.Total()
}

// Subtotal returns the sum of line totals, rejecting malformed carts.
func (e Engine) Subtotal(state cart.State) (decimal.Decimal, error) {
	for _, l := range state.Lines {
		if l.Quantity < 1 {
			return decimal.Zero, &InvalidCartError{ProductID: l.Product.ID, Quantity: l.Quantity}
		}
	}
	return state.Subtotal(), nil
}

// ShippingCost returns zero when the subtotal is strictly greater than the
// free-shipping threshold, otherwise the flat fee. The comparison is "greater
// than", not "greater or equal".
func (e Engine) ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(e.cfg.FreeShippingThreshold) {
		return decimal.Zero
	}
	return e.cfg.FlatShippingFee
}

// Tax returns subtotal times the tax rate, unrounded.
func (e Engine) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(e.cfg.TaxRate)
}

// Quote computes all totals for a cart. The grand total is derived from the
// unrounded subtotal.
func (e Engine) Quote(state cart.State) (Totals, error) {
	subtotal, err := e.Subtotal(state)
	if err != nil {
		return Totals{}, err
	}

	shipping := e.ShippingCost(subtotal)
	tax := e.Tax(subtotal)

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax),
	}, nil
}

// Convert applies a currency conversion rate to a base amount. This is the
// single conversion point; callers must not duplicate the multiplication.
func Convert(rate, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}
