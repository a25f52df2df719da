package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/agentauth/internal/models"
)

// InvitationStore persists invitation codes.
type InvitationStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewInvitationStore constructs an InvitationStore. clock may be nil.
func NewInvitationStore(db *gorm.DB, clock func() time.Time) (*InvitationStore, error) {
	if db == nil {
		return nil, errors.New("invitation store: db is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &InvitationStore{db: db, now: clock}, nil
}

// FindActiveByCode returns the invitation only when the code matches exactly and
// the invitation is active. Inactive and unknown codes both yield ErrNotFound.
func (s *InvitationStore) FindActiveByCode(ctx context.Context, code string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Where("invitation_code = ? AND is_active = ?", models.NormalizeInvitationCode(code), true).
		Take(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation store: find code: %w", err)
	}
	return &invitation, nil
}

// MarkUsed records the most recent use of a code. Unknown codes are ignored.
func (s *InvitationStore) MarkUsed(ctx context.Context, code string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("invitation_code = ?", models.NormalizeInvitationCode(code)).
		Update("used_at", s.now().UTC()).Error
	if err != nil {
		return fmt.Errorf("invitation store: mark used: %w", err)
	}
	return nil
}

// ListAll returns every invitation, newest first.
func (s *InvitationStore) ListAll(ctx context.Context) ([]models.Invitation, error) {
	invitations := make([]models.Invitation, 0)
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("invitation store: list: %w", err)
	}
	return invitations, nil
}

// SetActive enables or disables a code without touching its history.
func (s *InvitationStore) SetActive(ctx context.Context, code string, active bool) error {
	result := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("invitation_code = ?", models.NormalizeInvitationCode(code)).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("invitation store: set active: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
