package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/craftline/storefront/internal/domain/order"
)

type orderItemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type orderDTO struct {
	ID            string         `json:"id"`
	Items         []orderItemDTO `json:"items"`
	Address       order.Address  `json:"address"`
	PaymentMethod string         `json:"payment_method"`
	Subtotal      float64        `json:"subtotal"`
	Shipping      float64        `json:"shipping"`
	Tax           float64        `json:"tax"`
	Total         float64        `json:"total"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func toOrderDTO(o *order.Order) orderDTO {
	items := make([]orderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemDTO{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.Round(2).InexactFloat64(),
			Quantity:  it.Quantity,
		}
	}
	return orderDTO{
		ID:            o.ID,
		Items:         items,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Subtotal:      o.Subtotal.Round(2).InexactFloat64(),
		Shipping:      o.Shipping.Round(2).InexactFloat64(),
		Tax:           o.Tax.Round(2).InexactFloat64(),
		Total:         o.Total.Round(2).InexactFloat64(),
		Status:        o.Status.String(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ListOrders returns the caller's orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	list, err := h.orders.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		zctx.From(r.Context()).Error("list orders", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	dtos := make([]orderDTO, len(list))
	for i := range list {
		dtos[i] = toOrderDTO(&list[i])
	}
	respondJSON(w, r, http.StatusOK, dtos)
}

// GetOrder returns one order. Non-admin callers only see their own orders;
// someone else's order is indistinguishable from a missing one.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	o, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("get order", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if o.UserID != identity.UserID && !identity.Admin {
		respondError(w, r, http.StatusNotFound, "order not found")
		return
	}
	respondJSON(w, r, http.StatusOK, toOrderDTO(o))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order along its lifecycle. Only transitions
// allowed by the lifecycle graph succeed; anything else is a conflict.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	o, err := h.lifecycle.Transition(r.Context(), orderID, order.Status(req.Status))
	if err != nil {
		var iterr *order.InvalidTransitionError
		switch {
		case errors.Is(err, order.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "order not found")
		case errors.As(err, &iterr):
			respondError(w, r, http.StatusConflict, iterr.Error())
		default:
			zctx.From(r.Context()).Error("update order status", zap.Error(err))
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	respondJSON(w, r, http.StatusOK, toOrderDTO(o))
}
