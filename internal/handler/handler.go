// Package handler exposes the storefront core over HTTP: catalog, cart,
// checkout, orders, and wishlist. Handlers translate JSON DTOs to domain
// calls and map domain errors to status codes; business rules live in the
// domain packages.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/craftline/storefront/internal/domain/cart"
	"github.com/craftline/storefront/internal/domain/checkout"
	"github.com/craftline/storefront/internal/domain/order"
	"github.com/craftline/storefront/internal/domain/product"
	"github.com/craftline/storefront/internal/domain/wishlist"
	"github.com/craftline/storefront/internal/pricing"
)

// Handler carries the domain dependencies for all routes.
type Handler struct {
	products  product.Repository
	carts     *cart.Service
	engine    pricing.Engine
	checkout  *checkout.Service
	orders    order.Repository
	lifecycle *order.Lifecycle
	wishlists *wishlist.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	carts *cart.Service,
	engine pricing.Engine,
	checkoutSvc *checkout.Service,
	orders order.Repository,
	lifecycle *order.Lifecycle,
	wishlists *wishlist.Service,
) *Handler {
	return &Handler{
		products:  products,
		carts:     carts,
		engine:    engine,
		checkout:  checkoutSvc,
		orders:    orders,
		lifecycle: lifecycle,
		wishlists: wishlists,
	}
}

// Routes builds the API router. The catalog is public; cart, checkout,
// orders, and wishlist require an authenticated identity, and order status
// transitions additionally require admin.
func (h *Handler) Routes(sec *Security) chi.Router {
	r := chi.NewRouter()

	r.Get("/products", h.ListProducts)
	r.Get("/products/{productID}", h.GetProduct)

	r.Group(func(r chi.Router) {
		r.Use(sec.Authenticate)

		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddCartItem)
		r.Put("/cart/items/{productID}", h.UpdateCartItem)
		r.Delete("/cart/items/{productID}", h.RemoveCartItem)
		r.Delete("/cart", h.ClearCart)

		r.Post("/checkout", h.SubmitCheckout)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{orderID}", h.GetOrder)

		r.Get("/wishlist", h.GetWishlist)
		r.Put("/wishlist/{productID}", h.AddWishlistItem)
		r.Delete("/wishlist/{productID}", h.RemoveWishlistItem)

		r.Group(func(r chi.Router) {
			r.Use(sec.RequireAdmin)
			r.Post("/orders/{orderID}/status", h.UpdateOrderStatus)
		})
	})

	return r
}

// sessionID returns the cart session for an identity. Each user has exactly
// one active cart session.
func sessionID(userID string) string {
	return userID
}
