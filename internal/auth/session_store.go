package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/agentauth/internal/models"
)

// SessionStore persists issued session tokens.
type SessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionStore constructs a SessionStore. clock may be nil.
func NewSessionStore(db *gorm.DB, clock func() time.Time) (*SessionStore, error) {
	if db == nil {
		return nil, errors.New("session store: db is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &SessionStore{db: db, now: clock}, nil
}

// Create inserts a new session row. A duplicate token yields ErrTokenConflict.
func (s *SessionStore) Create(ctx context.Context, session *models.Session) error {
	if session == nil {
		return errors.New("session store: session is required")
	}

	session.CreatedAt = session.CreatedAt.UTC()
	session.ExpiresAt = session.ExpiresAt.UTC()

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrTokenConflict
		}
		return fmt.Errorf("session store: create: %w", err)
	}
	return nil
}

// FindValidByToken returns the session only while expires_at is strictly in the
// future. Expired and absent tokens both yield ErrNotFound.
func (s *SessionStore) FindValidByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("session_token = ? AND expires_at > ?", token, s.now().UTC()).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session store: find token: %w", err)
	}
	return &session, nil
}

// DeleteByToken removes the session if present.
func (s *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).
		Where("session_token = ?", token).
		Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("session store: delete: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions whose expiry has passed and returns the count.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now().UTC()).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session store: purge expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}
