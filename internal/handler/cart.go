package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/craftline/storefront/internal/domain/cart"
	"github.com/craftline/storefront/internal/domain/product"
)

type cartLineDTO struct {
	Product   productDTO `json:"product"`
	Quantity  int        `json:"quantity"`
	LineTotal float64    `json:"line_total"`
}

type cartDTO struct {
	Lines     []cartLineDTO `json:"lines"`
	ItemCount int           `json:"item_count"`
	Subtotal  float64       `json:"subtotal"`
	Shipping  float64       `json:"shipping"`
	Tax       float64       `json:"tax"`
	Total     float64       `json:"total"`
}

// toCartDTO derives item count and totals fresh from the lines on every
// read; nothing here is cached.
func (h *Handler) toCartDTO(state cart.State) (cartDTO, error) {
	totals, err := h.engine.Quote(state)
	if err != nil {
		return cartDTO{}, err
	}

	lines := make([]cartLineDTO, len(state.Lines))
	for i, l := range state.Lines {
		lines[i] = cartLineDTO{
			Product:   toProductDTO(l.Product),
			Quantity:  l.Quantity,
			LineTotal: l.Total().Round(2).InexactFloat64(),
		}
	}

	return cartDTO{
		Lines:     lines,
		ItemCount: state.ItemCount(),
		Subtotal:  totals.Subtotal.Round(2).InexactFloat64(),
		Shipping:  totals.Shipping.Round(2).InexactFloat64(),
		Tax:       totals.Tax.Round(2).InexactFloat64(),
		Total:     totals.GrandTotal.Round(2).InexactFloat64(),
	}, nil
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, state cart.State) {
	dto, err := h.toCartDTO(state)
	if err != nil {
		zctx.From(r.Context()).Error("price cart", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, r, http.StatusOK, dto)
}

// GetCart returns the caller's cart with derived totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	state, err := h.carts.Get(r.Context(), sessionID(identity.UserID))
	if err != nil {
		zctx.From(r.Context()).Error("get cart", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondCart(w, r, state)
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddCartItem adds a product to the cart, merging into an existing line.
// A missing quantity defaults to 1.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusUnprocessableEntity, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	state, err := h.carts.AddItem(r.Context(), sessionID(identity.UserID), *p, req.Quantity)
	if err != nil {
		var iq *cart.InvalidQuantityError
		if errors.As(err, &iq) {
			respondError(w, r, http.StatusUnprocessableEntity, iq.Error())
			return
		}
		zctx.From(r.Context()).Error("add cart item", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondCart(w, r, state)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem sets a line's quantity; a quantity below 1 removes the line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state, err := h.carts.UpdateQuantity(r.Context(), sessionID(identity.UserID), productID, req.Quantity)
	if err != nil {
		zctx.From(r.Context()).Error("update cart item", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondCart(w, r, state)
}

// RemoveCartItem deletes a line; removing an absent product is a no-op.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	state, err := h.carts.RemoveItem(r.Context(), sessionID(identity.UserID), productID)
	if err != nil {
		zctx.From(r.Context()).Error("remove cart item", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondCart(w, r, state)
}

// ClearCart empties the caller's cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	if err := h.carts.Clear(r.Context(), sessionID(identity.UserID)); err != nil {
		zctx.From(r.Context()).Error("clear cart", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondCart(w, r, cart.State{})
}
