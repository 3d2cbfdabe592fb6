package session

import (
	"context"
	"testing"
	"time"

	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func newMemoryStore(ttl time.Duration) *MemoryStore {
	return NewMemoryStore(ttl, utils.NewLogger(utils.Config{LogLevel: "error"}))
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := newMemoryStore(time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, Session{
		Token: "tok-1",
		User:  models.User{ID: "u1", Email: "a@example.com"},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)

	sess, err := store.Get(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "a@example.com", sess.User.Email)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestMemoryStore_DistinctIDs(t *testing.T) {
	store := newMemoryStore(time.Hour)
	ctx := context.Background()

	a, err := store.Create(ctx, Session{Token: "t1"})
	assert.NoError(t, err)
	b, err := store.Create(ctx, Session{Token: "t2"})
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := newMemoryStore(time.Hour)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := newMemoryStore(time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, Session{Token: "tok"})
	assert.NoError(t, err)

	assert.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error
	assert.NoError(t, store.Delete(ctx, id))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := newMemoryStore(20 * time.Millisecond)
	ctx := context.Background()

	id, err := store.Create(ctx, Session{Token: "tok"})
	assert.NoError(t, err)

	_, err = store.Get(ctx, id)
	assert.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
