package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/agentauth/internal/database/testutil"
	"github.com/charlesng35/agentauth/internal/models"
)

func newSessionStoreFixture(t *testing.T) (*SessionStore, *models.Invitation, *testClock) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	clock := newTestClock()
	store, err := NewSessionStore(db, clock.Now)
	require.NoError(t, err)

	var inv models.Invitation
	require.NoError(t, db.Where("invitation_code = ?", "JK23").Take(&inv).Error)
	return store, &inv, clock
}

func TestSessionStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	store, inv, clock := newSessionStoreFixture(t)

	session := &models.Session{
		SessionToken: "token-a",
		UserID:       inv.ID,
		Username:     inv.Username,
		CreatedAt:    clock.Now(),
		ExpiresAt:    clock.Now().Add(time.Hour),
	}
	require.NoError(t, store.Create(ctx, session))
	require.NotZero(t, session.ID)

	found, err := store.FindValidByToken(ctx, "token-a")
	require.NoError(t, err)
	require.Equal(t, inv.ID, found.UserID)
	require.Equal(t, "Lorenzo", found.Username)
	require.True(t, found.ExpiresAt.Equal(clock.Now().Add(time.Hour)))
}

func TestSessionStoreDuplicateTokenConflict(t *testing.T) {
	ctx := context.Background()
	store, inv, clock := newSessionStoreFixture(t)

	first := &models.Session{SessionToken: "dup", UserID: inv.ID, Username: inv.Username, CreatedAt: clock.Now(), ExpiresAt: clock.Now().Add(time.Hour)}
	require.NoError(t, store.Create(ctx, first))

	second := &models.Session{SessionToken: "dup", UserID: inv.ID, Username: inv.Username, CreatedAt: clock.Now(), ExpiresAt: clock.Now().Add(time.Hour)}
	require.ErrorIs(t, store.Create(ctx, second), ErrTokenConflict)
}

func TestSessionStoreExpiryIsStrict(t *testing.T) {
	ctx := context.Background()
	store, inv, clock := newSessionStoreFixture(t)

	require.NoError(t, store.Create(ctx, &models.Session{
		SessionToken: "short",
		UserID:       inv.ID,
		Username:     inv.Username,
		CreatedAt:    clock.Now(),
		ExpiresAt:    clock.Now().Add(time.Minute),
	}))

	clock.Advance(time.Minute - time.Second)
	_, err := store.FindValidByToken(ctx, "short")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = store.FindValidByToken(ctx, "short")
	require.ErrorIs(t, err, ErrNotFound, "a session expiring exactly now is invalid")

	_, err = store.FindValidByToken(ctx, "never-issued")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStoreDeleteByToken(t *testing.T) {
	ctx := context.Background()
	store, inv, clock := newSessionStoreFixture(t)

	require.NoError(t, store.Create(ctx, &models.Session{
		SessionToken: "gone",
		UserID:       inv.ID,
		Username:     inv.Username,
		CreatedAt:    clock.Now(),
		ExpiresAt:    clock.Now().Add(time.Hour),
	}))

	require.NoError(t, store.DeleteByToken(ctx, "gone"))
	_, err := store.FindValidByToken(ctx, "gone")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteByToken(ctx, "gone"))
	require.NoError(t, store.DeleteByToken(ctx, "never-issued"))
}

func TestSessionStorePurgeExpired(t *testing.T) {
	ctx := context.Background()
	store, inv, clock := newSessionStoreFixture(t)

	for i, ttl := range []time.Duration{time.Minute, time.Hour, 48 * time.Hour} {
		require.NoError(t, store.Create(ctx, &models.Session{
			SessionToken: string(rune('a' + i)),
			UserID:       inv.ID,
			Username:     inv.Username,
			CreatedAt:    clock.Now(),
			ExpiresAt:    clock.Now().Add(ttl),
		}))
	}

	clock.Advance(2 * time.Hour)
	removed, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	_, err = store.FindValidByToken(ctx, "c")
	require.NoError(t, err)
}

func TestIsUniqueConstraintError(t *testing.T) {
	require.False(t, isUniqueConstraintError(nil))
	require.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: sessions.session_token")))
	require.True(t, isUniqueConstraintError(errors.New("Error 1062: Duplicate entry")))
	require.False(t, isUniqueConstraintError(errors.New("FOREIGN KEY constraint failed")))
}
