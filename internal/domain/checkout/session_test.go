package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftline/storefront/internal/domain/cart"
	"github.com/craftline/storefront/internal/domain/order"
	"github.com/craftline/storefront/internal/domain/product"
	"github.com/craftline/storefront/internal/pricing"
)

// --- Mock implementations ---

type memorySnapshotStore struct {
	snapshots map[string]cart.State
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{snapshots: make(map[string]cart.State)}
}

func (m *memorySnapshotStore) Load(_ context.Context, sessionID string) (*cart.State, error) {
	state, ok := m.snapshots[sessionID]
	if !ok {
		return nil, cart.ErrSnapshotNotFound
	}
	clone := state.Clone()
	return &clone, nil
}

func (m *memorySnapshotStore) Save(_ context.Context, sessionID string, state cart.State) error {
	m.snapshots[sessionID] = state.Clone()
	return nil
}

func (m *memorySnapshotStore) Delete(_ context.Context, sessionID string) error {
	delete(m.snapshots, sessionID)
	return nil
}

type mockOrderRepo struct {
	created   []*order.Order
	createErr error
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, o)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, _ string) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, _ order.Status, _ time.Time) error {
	return nil
}

// --- Helpers ---

type fixture struct {
	carts     *cart.Service
	snapshots *memorySnapshotStore
	orders    *mockOrderRepo
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	snapshots := newMemorySnapshotStore()
	carts := cart.NewService(snapshots)
	orders := &mockOrderRepo{}

	engine := pricing.NewEngine(pricing.RateConfig{
		TaxRate:               decimal.RequireFromString("0.18"),
		FreeShippingThreshold: decimal.NewFromInt(4000),
		FlatShippingFee:       decimal.NewFromInt(199),
	})

	svc := NewService(Config{CODCeiling: decimal.NewFromInt(10000)}, carts, engine, orders)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "order-fixed" }

	return &fixture{carts: carts, snapshots: snapshots, orders: orders, svc: svc}
}

func (f *fixture) fillCart(t *testing.T, price string, qty int) {
	t.Helper()

	p := product.Product{ID: "p1", Name: "Widget", Price: decimal.RequireFromString(price)}
	_, err := f.carts.AddItem(context.Background(), "cart-1", p, qty)
	require.NoError(t, err)
}

// --- Tests ---

func TestSubmit_Succeeds(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "1000.00", 2)

	sess := f.svc.NewSession("user-1", "cart-1")
	assert.Equal(t, StateEditing, sess.State())

	o, err := sess.Submit(context.Background(), validCardForm())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, sess.State())
	assert.Equal(t, "order-fixed", o.ID)
	assert.Equal(t, "user-1", o.UserID)
	assert.Equal(t, order.StatusPending, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)

	// 2000 subtotal + 199 shipping + 360 tax.
	assert.True(t, decimal.NewFromInt(2559).Equal(o.Total))

	// Cart is cleared after a successful submission.
	state, err := f.carts.Get(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestSubmit_SnapshotsEffectivePrices(t *testing.T) {
	f := newFixture(t)
	discount := decimal.RequireFromString("800.00")
	p := product.Product{
		ID:            "p1",
		Name:          "Widget",
		Price:         decimal.RequireFromString("1000.00"),
		DiscountPrice: &discount,
	}
	_, err := f.carts.AddItem(context.Background(), "cart-1", p, 1)
	require.NoError(t, err)

	sess := f.svc.NewSession("user-1", "cart-1")
	o, err := sess.Submit(context.Background(), validCardForm())
	require.NoError(t, err)

	assert.True(t, discount.Equal(o.Items[0].UnitPrice))
}

func TestSubmit_EmptyCart(t *testing.T) {
	f := newFixture(t)

	sess := f.svc.NewSession("user-1", "cart-1")
	_, err := sess.Submit(context.Background(), validCardForm())

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StateRejected, sess.State())
	assert.Empty(t, f.orders.created)
}

func TestSubmit_ValidationFailurePreservesCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "1000.00", 1)

	form := validCardForm()
	form.AgreeTerms = false

	sess := f.svc.NewSession("user-1", "cart-1")
	_, err := sess.Submit(context.Background(), form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("agreeTerms"))
	assert.Equal(t, StateEditing, sess.State())

	state, err := f.carts.Get(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.ItemCount())
	assert.Empty(t, f.orders.created)
}

func TestSubmit_CODCeilingUsesGrandTotal(t *testing.T) {
	f := newFixture(t)
	// 8500 subtotal ships free, 1530 tax, 10030 grand total: over the
	// 10000 ceiling even though the subtotal is under it.
	f.fillCart(t, "8500.00", 1)

	sess := f.svc.NewSession("user-1", "cart-1")
	_, err := sess.Submit(context.Background(), validCODForm())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("paymentMethod"))
	assert.Equal(t, StateEditing, sess.State())
}

func TestSubmit_RetryAfterValidationFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "1000.00", 1)

	sess := f.svc.NewSession("user-1", "cart-1")

	form := validCardForm()
	form.AgreeTerms = false
	_, err := sess.Submit(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, StateEditing, sess.State())

	form.AgreeTerms = true
	o, err := sess.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, sess.State())
	assert.NotNil(t, o)
}

func TestSubmit_PersistenceFailurePreservesCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "1000.00", 1)
	f.orders.createErr = errors.New("db down")

	sess := f.svc.NewSession("user-1", "cart-1")
	_, err := sess.Submit(context.Background(), validCardForm())

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StateRejected, sess.State())

	state, err := f.carts.Get(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.ItemCount())
}

func TestSubmit_IdempotentRetry(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "1000.00", 1)
	f.orders.createErr = order.ErrAlreadyExists

	form := validCardForm()
	form.IdempotencyKey = "client-key-1"

	sess := f.svc.NewSession("user-1", "cart-1")
	o, err := sess.Submit(context.Background(), form)

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, sess.State())
	assert.Equal(t, "client-key-1", o.ID)
}

func TestSubmit_CompletedSessionRefusesResubmission(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "1000.00", 1)

	sess := f.svc.NewSession("user-1", "cart-1")
	_, err := sess.Submit(context.Background(), validCardForm())
	require.NoError(t, err)

	_, err = sess.Submit(context.Background(), validCardForm())
	require.ErrorIs(t, err, ErrSessionCompleted)
}
