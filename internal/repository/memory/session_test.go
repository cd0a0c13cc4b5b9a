package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kapebot/internal/domain"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	t.Run("missing session is nil, nil", func(t *testing.T) {
		sess, err := store.Get(ctx, "nobody")
		assert.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		sess := domain.NewSession()
		sess.Step = domain.StepAskBudget
		sess.Criteria.Neighborhood = "Villa Morra"

		require.NoError(t, store.Set(ctx, "user-1", sess))

		got, err := store.Get(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.StepAskBudget, got.Step)
		assert.Equal(t, "Villa Morra", got.Criteria.Neighborhood)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := store.Get(ctx, "user-1")
		require.NoError(t, err)

		got.Step = domain.StepAskKind

		again, err := store.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StepAskBudget, again.Step)
	})

	t.Run("delete removes the session", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "user-1"))

		got, err := store.Get(ctx, "user-1")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("deleting a missing session is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "user-1"))
	})
}

func TestGreetedStore(t *testing.T) {
	ctx := context.Background()
	store := NewGreetedStore()

	greeted, err := store.WasGreeted(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, greeted)

	require.NoError(t, store.MarkGreeted(ctx, "user-1"))

	greeted, err = store.WasGreeted(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, greeted)
}

func TestPropertyRepo_All(t *testing.T) {
	ctx := context.Background()
	repo := NewSeededPropertyRepo()

	listings, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 5)

	// catalog order is stable
	assert.Equal(t, "1", listings[0].ID)
	assert.Equal(t, "5", listings[4].ID)

	// callers get a copy
	listings[0].Title = "mutated"
	again, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dúplex moderno en Villa Morra", again[0].Title)
}
