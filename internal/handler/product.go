package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/craftline/storefront/internal/domain/product"
)

type productDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	Currency      string   `json:"currency"`
	Stock         int      `json:"stock"`
	Category      string   `json:"category"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
}

func toProductDTO(p product.Product) productDTO {
	dto := productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.Round(2).InexactFloat64(),
		Currency:    p.Currency,
		Stock:       p.Stock,
		Category:    p.Category,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
	}
	if p.DiscountPrice != nil {
		v := p.DiscountPrice.Round(2).InexactFloat64()
		dto.DiscountPrice = &v
	}
	return dto
}

// ListProducts returns catalog products, optionally filtered by the
// category and in_stock query parameters.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := product.Filter{
		Category: r.URL.Query().Get("category"),
		InStock:  r.URL.Query().Get("in_stock") == "true",
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		zctx.From(r.Context()).Error("list products", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]productDTO, len(products))
	for i, p := range products {
		out[i] = toProductDTO(p)
	}
	respondJSON(w, r, http.StatusOK, out)
}

// GetProduct returns a single catalog product by id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.String("id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, r, http.StatusOK, toProductDTO(*p))
}
