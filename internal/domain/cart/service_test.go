package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type memorySnapshotStore struct {
	snapshots map[string]State
	loadErr   error
	saveErr   error
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{snapshots: make(map[string]State)}
}

func (m *memorySnapshotStore) Load(_ context.Context, sessionID string) (*State, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	state, ok := m.snapshots[sessionID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	clone := state.Clone()
	return &clone, nil
}

func (m *memorySnapshotStore) Save(_ context.Context, sessionID string, state State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshots[sessionID] = state.Clone()
	return nil
}

func (m *memorySnapshotStore) Delete(_ context.Context, sessionID string) error {
	delete(m.snapshots, sessionID)
	return nil
}

// --- Tests ---

func TestService_Get_MissingSnapshotIsEmptyCart(t *testing.T) {
	svc := NewService(newMemorySnapshotStore())

	state, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestService_AddItem_PersistsAcrossLoads(t *testing.T) {
	store := newMemorySnapshotStore()
	svc := NewService(store)
	p := newTestProduct("p1", "Widget", decimal.RequireFromString("10.00"))

	_, err := svc.AddItem(context.Background(), "s1", p, 2)
	require.NoError(t, err)

	state, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 2, state.Lines[0].Quantity)
}

func TestService_AddItem_MergesIntoSnapshot(t *testing.T) {
	svc := NewService(newMemorySnapshotStore())
	p := newTestProduct("p1", "Widget", decimal.NewFromInt(10))

	_, err := svc.AddItem(context.Background(), "s1", p, 2)
	require.NoError(t, err)
	state, err := svc.AddItem(context.Background(), "s1", p, 3)
	require.NoError(t, err)

	require.Len(t, state.Lines, 1)
	assert.Equal(t, 5, state.Lines[0].Quantity)
}

func TestService_AddItem_InvalidQuantityLeavesSnapshotUntouched(t *testing.T) {
	store := newMemorySnapshotStore()
	svc := NewService(store)
	p := newTestProduct("p1", "Widget", decimal.NewFromInt(10))

	_, err := svc.AddItem(context.Background(), "s1", p, 1)
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), "s1", p, 0)
	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)

	state, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.ItemCount())
}

func TestService_SessionsAreIsolated(t *testing.T) {
	svc := NewService(newMemorySnapshotStore())
	p := newTestProduct("p1", "Widget", decimal.NewFromInt(10))

	_, err := svc.AddItem(context.Background(), "alice", p, 1)
	require.NoError(t, err)

	state, err := svc.Get(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestService_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	svc := NewService(newMemorySnapshotStore())
	p := newTestProduct("p1", "Widget", decimal.NewFromInt(10))

	_, err := svc.AddItem(context.Background(), "s1", p, 2)
	require.NoError(t, err)

	state, err := svc.UpdateQuantity(context.Background(), "s1", "p1", 0)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestService_RemoveItem_AbsentIsNoop(t *testing.T) {
	svc := NewService(newMemorySnapshotStore())
	p := newTestProduct("p1", "Widget", decimal.NewFromInt(10))

	_, err := svc.AddItem(context.Background(), "s1", p, 2)
	require.NoError(t, err)

	state, err := svc.RemoveItem(context.Background(), "s1", "missing")
	require.NoError(t, err)
	assert.Equal(t, 2, state.ItemCount())
}

func TestService_Clear(t *testing.T) {
	store := newMemorySnapshotStore()
	svc := NewService(store)
	p := newTestProduct("p1", "Widget", decimal.NewFromInt(10))

	_, err := svc.AddItem(context.Background(), "s1", p, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "s1"))

	state, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestService_LoadErrorPropagates(t *testing.T) {
	store := newMemorySnapshotStore()
	store.loadErr = errors.New("redis down")
	svc := NewService(store)

	_, err := svc.Get(context.Background(), "s1")
	require.Error(t, err)
}

func TestService_SaveErrorPropagates(t *testing.T) {
	store := newMemorySnapshotStore()
	store.saveErr = errors.New("redis down")
	svc := NewService(store)
	p := newTestProduct("p1", "Widget", decimal.NewFromInt(10))

	_, err := svc.AddItem(context.Background(), "s1", p, 1)
	require.Error(t, err)
}
