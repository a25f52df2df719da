package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/agentauth/internal/database/testutil"
	"github.com/charlesng35/agentauth/internal/models"
)

type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

type serviceFixture struct {
	db          *gorm.DB
	svc         *Service
	invitations *InvitationStore
	sessions    *SessionStore
	clock       *testClock
}

func setupService(t *testing.T, log *zap.Logger) serviceFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	clock := newTestClock()

	svc, invitations, sessions, err := NewServiceFromDB(db, Config{
		Clock:  clock.Now,
		Logger: log,
	})
	require.NoError(t, err)

	return serviceFixture{
		db:          db,
		svc:         svc,
		invitations: invitations,
		sessions:    sessions,
		clock:       clock,
	}
}

func createInvitation(t *testing.T, db *gorm.DB, code, username string, createdAt time.Time) *models.Invitation {
	t.Helper()

	inv := &models.Invitation{InvitationCode: code, Username: username, IsActive: true, CreatedAt: createdAt}
	require.NoError(t, db.Create(inv).Error)
	return inv
}
