package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/craftline/storefront/internal/domain/checkout"
)

type checkoutRequest struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostCode      string `json:"post_code"`
	Country       string `json:"country"`
	PaymentMethod string `json:"payment_method"`
	CardNumber    string `json:"card_number,omitempty"`
	CardExpiry    string `json:"card_expiry,omitempty"`
	CardCVC       string `json:"card_cvc,omitempty"`
	AgreeTerms    bool   `json:"agree_terms"`
	// IdempotencyKey lets a client retry a submission whose response was
	// lost without creating a second order.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type checkoutResponse struct {
	Order orderDTO `json:"order"`
	State string   `json:"state"`
}

// SubmitCheckout runs the checkout state machine over the caller's cart.
// Card number and expiry are normalized before validation, so clients may
// send either formatted or raw digits.
func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	form := checkout.FormData{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		Street:         req.Street,
		City:           req.City,
		State:          req.State,
		PostCode:       req.PostCode,
		Country:        req.Country,
		PaymentMethod:  checkout.PaymentMethod(req.PaymentMethod),
		CardNumber:     checkout.FormatCardNumber(req.CardNumber),
		CardExpiry:     checkout.FormatExpiry(req.CardExpiry),
		CardCVC:        req.CardCVC,
		AgreeTerms:     req.AgreeTerms,
		IdempotencyKey: req.IdempotencyKey,
	}

	sess := h.checkout.NewSession(identity.UserID, sessionID(identity.UserID))
	o, err := sess.Submit(r.Context(), form)
	if err != nil {
		var verr *checkout.ValidationError
		var serr *checkout.SubmissionError
		switch {
		case errors.As(err, &verr):
			fields := make([]fieldErrorDTO, len(verr.Fields))
			for i, f := range verr.Fields {
				fields[i] = fieldErrorDTO{Field: f.Field, Message: f.Message}
			}
			respondJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
				Code:    http.StatusUnprocessableEntity,
				Message: "validation failed",
				Fields:  fields,
			})
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, r, http.StatusBadRequest, "cart is empty")
		case errors.As(err, &serr):
			zctx.From(r.Context()).Error("submit order", zap.Error(err))
			respondError(w, r, http.StatusServiceUnavailable, "order submission failed, please retry")
		default:
			zctx.From(r.Context()).Error("checkout", zap.Error(err))
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, r, http.StatusCreated, checkoutResponse{
		Order: toOrderDTO(o),
		State: string(sess.State()),
	})
}
