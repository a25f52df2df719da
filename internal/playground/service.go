package playground

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/agentauth/internal/models"
	"github.com/charlesng35/agentauth/pkg/logger"
)

const (
	untitled       = "Untitled"
	titleMaxRunes  = 50
	legacyUserID   = "1"
	legacyUsername = "Lorenzo"
)

// ErrAgentNotFound is returned for agent ids outside the configured set.
var ErrAgentNotFound = errors.New("playground: agent not found")

// SessionSummary is one entry of an agent's session listing.
type SessionSummary struct {
	SessionID string  `json:"session_id"`
	Title     string  `json:"title"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
	UserID    *string `json:"user_id"`
}

// SessionLister is the read side of the session store.
type SessionLister interface {
	ListByAgent(ctx context.Context, agentID string, userIDs []string) ([]models.AgentSession, error)
}

// Service lists agent sessions scoped to a user.
type Service struct {
	sessions SessionLister
	agents   map[string]struct{}
	log      *zap.Logger
}

func NewService(sessions SessionLister, agents []string) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("playground service: session store is required")
	}

	known := make(map[string]struct{}, len(agents))
	for _, id := range agents {
		if id = strings.TrimSpace(id); id != "" {
			known[id] = struct{}{}
		}
	}

	return &Service{
		sessions: sessions,
		agents:   known,
		log:      logger.WithModule("playground"),
	}, nil
}

// ListSessions returns summaries for the agent. An empty userID lists every
// session; otherwise only sessions owned by userID or its legacy alias.
func (s *Service) ListSessions(ctx context.Context, agentID, userID string) ([]SessionSummary, error) {
	if _, ok := s.agents[agentID]; !ok {
		return nil, ErrAgentNotFound
	}

	records, err := s.sessions.ListByAgent(ctx, agentID, candidateUserIDs(userID))
	if err != nil {
		return nil, fmt.Errorf("playground service: list sessions: %w", err)
	}

	summaries := make([]SessionSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, SessionSummary{
			SessionID: record.SessionID,
			Title:     s.extractTitle(record),
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
			UserID:    record.UserID,
		})
	}
	return summaries, nil
}

// candidateUserIDs expands a user id with the fixed "1" <-> "Lorenzo" alias
// kept for sessions written before numeric ids existed.
func candidateUserIDs(userID string) []string {
	if userID == "" {
		return nil
	}
	switch userID {
	case legacyUserID:
		return []string{userID, legacyUsername}
	case legacyUsername:
		return []string{userID, legacyUserID}
	default:
		return []string{userID}
	}
}

type agentMemory struct {
	Runs []struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	} `json:"runs"`
}

// extractTitle uses the first user message of the first run. Index 0 holds
// the system prompt.
func (s *Service) extractTitle(record models.AgentSession) string {
	if len(record.Memory) == 0 {
		return untitled
	}

	var memory agentMemory
	if err := json.Unmarshal(record.Memory, &memory); err != nil {
		s.log.Debug("unreadable session memory", zap.String("session_id", record.SessionID), zap.Error(err))
		return untitled
	}
	if len(memory.Runs) == 0 || len(memory.Runs[0].Messages) < 2 {
		return untitled
	}

	message := memory.Runs[0].Messages[1]
	if message.Role != "user" {
		return untitled
	}

	text := contentText(message.Content)
	if text == "" {
		return untitled
	}
	return truncateRunes(text, titleMaxRunes)
}

func contentText(raw json.RawMessage) string {
	var value any
	if len(raw) == 0 || json.Unmarshal(raw, &value) != nil {
		return ""
	}

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
	case float64:
		if v == 0 {
			return ""
		}
	case []any:
		if len(v) == 0 {
			return ""
		}
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
	}
	return string(raw)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
