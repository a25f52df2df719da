package playground

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/agentauth/internal/models"
)

// Store reads and writes agent conversation records.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("playground store: db is required")
	}
	return &Store{db: db}, nil
}

// Save inserts the session or replaces its user, memory and updated_at.
func (s *Store) Save(ctx context.Context, session *models.AgentSession) error {
	if session == nil || session.SessionID == "" || session.AgentID == "" {
		return errors.New("playground store: session id and agent id are required")
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "memory", "updated_at"}),
		}).
		Create(session).Error
	if err != nil {
		return fmt.Errorf("playground store: save: %w", err)
	}
	return nil
}

// ListByAgent returns the agent's sessions, newest first. When userIDs is
// non-empty only sessions owned by one of them are returned; sessions without
// an owner never match a filter.
func (s *Store) ListByAgent(ctx context.Context, agentID string, userIDs []string) ([]models.AgentSession, error) {
	query := s.db.WithContext(ctx).Where("agent_id = ?", agentID)
	if len(userIDs) > 0 {
		query = query.Where("user_id IN ?", userIDs)
	}

	sessions := make([]models.AgentSession, 0)
	if err := query.Order("created_at DESC").Order("session_id").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("playground store: list: %w", err)
	}
	return sessions, nil
}
