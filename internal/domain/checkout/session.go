package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/craftline/storefront/internal/domain/cart"
	"github.com/craftline/storefront/internal/domain/order"
	"github.com/craftline/storefront/internal/pricing"
)

// State enumerates the submission states of one checkout session.
type State string

const (
	// StateEditing is the initial state.
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	// StateCompleted is terminal: the order exists and the cart is cleared.
	StateCompleted State = "completed"
	// StateRejected is not terminal: it marks a failed submission attempt
	// and the submission may be retried. Validation failures do not end
	// here; they return the session to StateEditing with field errors.
	StateRejected State = "rejected"
)

// ErrEmptyCart is returned when a submission is attempted over a cart with
// no lines.
var ErrEmptyCart = errors.New("cart is empty")

// ErrSessionCompleted is returned when Submit is called on a session that
// already produced an order.
var ErrSessionCompleted = errors.New("checkout session already completed")

// SubmissionError indicates order persistence failed. The cart is preserved
// and the submission may be retried without double-charging.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "order submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Config holds the business rules the checkout enforces beyond field checks.
type Config struct {
	// CODCeiling is the grand total at or above which cash on delivery is
	// not eligible.
	CODCeiling decimal.Decimal
}

// Service wires checkout sessions to the cart, pricing engine, and order
// store. It is constructed once and shared; each session is per user.
type Service struct {
	cfg    Config
	carts  *cart.Service
	engine pricing.Engine
	orders order.Repository

	now   func() time.Time
	newID func() string
}

// NewService creates a checkout Service.
func NewService(cfg Config, carts *cart.Service, engine pricing.Engine, orders order.Repository) *Service {
	return &Service{
		cfg:    cfg,
		carts:  carts,
		engine: engine,
		orders: orders,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// NewSession starts a checkout session for the given user and cart session.
func (s *Service) NewSession(userID, cartSessionID string) *Session {
	return &Session{
		svc:    s,
		userID: userID,
		cartID: cartSessionID,
		state:  StateEditing,
	}
}

// Session is the checkout state machine for one user. It owns the form data
// for the duration of the checkout and discards it afterwards.
type Session struct {
	svc    *Service
	userID string
	cartID string
	state  State
}

// State returns the session's current submission state.
func (sess *Session) State() State {
	return sess.state
}

// Submit validates the form and, on success, freezes the cart into an order
// with status pending, persists it, and clears the cart. On validation
// failure it returns a *ValidationError and the session returns to editing.
// On persistence failure it returns a *SubmissionError and the cart is left
// untouched so the submission can be retried.
func (sess *Session) Submit(ctx context.Context, form FormData) (*order.Order, error) {
	if sess.state == StateCompleted {
		return nil, ErrSessionCompleted
	}

	sess.state = StateValidating

	state, err := sess.svc.carts.Get(ctx, sess.cartID)
	if err != nil {
		sess.state = StateRejected
		return nil, err
	}
	if state.IsEmpty() {
		sess.state = StateRejected
		return nil, ErrEmptyCart
	}

	totals, err := sess.svc.engine.Quote(state)
	if err != nil {
		sess.state = StateRejected
		return nil, err
	}

	if fields := Validate(form, totals.GrandTotal, sess.svc.cfg.CODCeiling); len(fields) > 0 {
		// Field errors send the form back to the user for correction.
		sess.state = StateEditing
		return nil, &ValidationError{Fields: fields}
	}

	sess.state = StateSubmitting

	o := sess.svc.buildOrder(sess.userID, state, form, totals)
	if err := sess.svc.orders.Create(ctx, o); err != nil {
		if !errors.Is(err, order.ErrAlreadyExists) {
			sess.state = StateRejected
			return nil, &SubmissionError{Err: err}
		}
		// Idempotent retry: the order was already persisted by an earlier
		// attempt whose response was lost.
		zctx.From(ctx).Info("order already exists, treating submission as completed",
			zap.String("order_id", o.ID),
		)
	}

	// The order is durable; clearing the cart is best effort. A leftover
	// snapshot expires on its own.
	if err := sess.svc.carts.Clear(ctx, sess.cartID); err != nil {
		zctx.From(ctx).Warn("clear cart after checkout",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}

	sess.state = StateCompleted
	return o, nil
}

// buildOrder freezes the cart and totals into an immutable order record.
// Unit prices are the effective prices at this moment, immune to later
// catalog changes.
func (s *Service) buildOrder(userID string, state cart.State, form FormData, totals pricing.Totals) *order.Order {
	id := form.IdempotencyKey
	if id == "" {
		id = s.newID()
	}

	items := make([]order.Item, len(state.Lines))
	for i, l := range state.Lines {
		items[i] = order.Item{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.EffectivePrice(),
			Quantity:  l.Quantity,
		}
	}

	now := s.now()
	return &order.Order{
		ID:     id,
		UserID: userID,
		Items:  items,
		Address: order.Address{
			FullName: form.FullName,
			Street:   form.Street,
			City:     form.City,
			State:    form.State,
			PostCode: form.PostCode,
			Country:  form.Country,
			Phone:    form.Phone,
		},
		PaymentMethod: string(form.PaymentMethod),
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.GrandTotal,
		Status:        order.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
