package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/craftline/storefront/internal/domain/product"
)

type wishlistResponse struct {
	Products []productDTO `json:"products"`
}

// GetWishlist returns the products on the caller's wishlist. Ids whose
// product no longer exists in the catalog are skipped.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	ids, err := h.wishlists.List(r.Context(), identity.UserID)
	if err != nil {
		zctx.From(r.Context()).Error("list wishlist", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	resp := wishlistResponse{Products: []productDTO{}}
	if len(ids) > 0 {
		products, err := h.products.GetByIDs(r.Context(), ids)
		if err != nil {
			zctx.From(r.Context()).Error("resolve wishlist products", zap.Error(err))
			respondError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		for _, p := range products {
			resp.Products = append(resp.Products, toProductDTO(p))
		}
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// AddWishlistItem puts a product on the caller's wishlist. Re-adding an
// already wishlisted product succeeds without change.
func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.wishlists.Add(r.Context(), identity.UserID, productID); err != nil {
		zctx.From(r.Context()).Error("add wishlist item", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveWishlistItem takes a product off the caller's wishlist; removing an
// absent product is a no-op.
func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	if err := h.wishlists.Remove(r.Context(), identity.UserID, productID); err != nil {
		zctx.From(r.Context()).Error("remove wishlist item", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
