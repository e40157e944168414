package wishlist

import (
	"context"
	"sort"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type memoryRepo struct {
	sets map[string]map[string]struct{}
	err  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sets: make(map[string]map[string]struct{})}
}

func (m *memoryRepo) Add(_ context.Context, userID, productID string) error {
	if m.err != nil {
		return m.err
	}
	if m.sets[userID] == nil {
		m.sets[userID] = make(map[string]struct{})
	}
	m.sets[userID][productID] = struct{}{}
	return nil
}

func (m *memoryRepo) Remove(_ context.Context, userID, productID string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.sets[userID], productID)
	return nil
}

func (m *memoryRepo) Contains(_ context.Context, userID, productID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.sets[userID][productID]
	return ok, nil
}

func (m *memoryRepo) List(_ context.Context, userID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, 0, len(m.sets[userID]))
	for id := range m.sets[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// --- Tests ---

func TestService_AddAndList(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "u1", "p1"))
	require.NoError(t, svc.Add(ctx, "u1", "p2"))

	ids, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}

func TestService_AddIsIdempotent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "u1", "p1"))
	require.NoError(t, svc.Add(ctx, "u1", "p1"))

	ids, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
}

func TestService_RemoveIsIdempotent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "u1", "p1"))
	require.NoError(t, svc.Remove(ctx, "u1", "p1"))
	require.NoError(t, svc.Remove(ctx, "u1", "p1"))

	ok, err := svc.Contains(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_UsersAreIsolated(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "alice", "p1"))

	ok, err := svc.Contains(ctx, "bob", "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestService_RepoErrorsWrapped(t *testing.T) {
	repo := newMemoryRepo()
	repo.err = errors.New("redis down")
	svc := NewService(repo)
	ctx := context.Background()

	assert.Error(t, svc.Add(ctx, "u1", "p1"))
	assert.Error(t, svc.Remove(ctx, "u1", "p1"))
	_, err := svc.Contains(ctx, "u1", "p1")
	assert.Error(t, err)
	_, err = svc.List(ctx, "u1")
	assert.Error(t, err)
}
