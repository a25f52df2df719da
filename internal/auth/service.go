package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/agentauth/internal/models"
	"github.com/charlesng35/agentauth/pkg/logger"
	"github.com/charlesng35/agentauth/pkg/metrics"
)

const (
	// DefaultSessionTTL is how long an issued session stays valid.
	DefaultSessionTTL = 30 * 24 * time.Hour

	maxTokenAttempts = 3
)

// InvitationRepository is the persistence contract for invitations.
type InvitationRepository interface {
	FindActiveByCode(ctx context.Context, code string) (*models.Invitation, error)
	MarkUsed(ctx context.Context, code string) error
	ListAll(ctx context.Context) ([]models.Invitation, error)
}

// SessionRepository is the persistence contract for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindValidByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

// TokenGenerator produces opaque session tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

// Config describes tunable behaviour for the Service.
type Config struct {
	SessionTTL time.Duration
	TokenBytes int
	Clock      func() time.Time
	Tokens     TokenGenerator
	Logger     *zap.Logger
}

// IssuedSession is returned after a successful invitation exchange.
type IssuedSession struct {
	SessionToken string
	UserID       uint
	Username     string
	ExpiresAt    time.Time
}

// Identity is the principal behind a valid session.
type Identity struct {
	UserID   uint
	Username string
}

// Service exchanges invitation codes for sessions and answers session checks.
// It holds no mutable state; concurrent calls are safe.
type Service struct {
	invitations InvitationRepository
	sessions    SessionRepository
	tokens      TokenGenerator
	ttl         time.Duration
	now         func() time.Time
	log         *zap.Logger
}

// NewService wires a Service from explicit repositories.
func NewService(invitations InvitationRepository, sessions SessionRepository, cfg Config) (*Service, error) {
	if invitations == nil {
		return nil, errors.New("auth service: invitation repository is required")
	}
	if sessions == nil {
		return nil, errors.New("auth service: session repository is required")
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = NewTokenIssuer(cfg.TokenBytes)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.WithModule("auth")
	}

	return &Service{
		invitations: invitations,
		sessions:    sessions,
		tokens:      tokens,
		ttl:         ttl,
		now:         clock,
		log:         log,
	}, nil
}

// NewServiceFromDB builds the gorm-backed stores and the Service on top of them.
func NewServiceFromDB(db *gorm.DB, cfg Config) (*Service, *InvitationStore, *SessionStore, error) {
	invitations, err := NewInvitationStore(db, cfg.Clock)
	if err != nil {
		return nil, nil, nil, err
	}
	sessions, err := NewSessionStore(db, cfg.Clock)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := NewService(invitations, sessions, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return svc, invitations, sessions, nil
}

// VerifyInvitation exchanges an invitation code for a new session. Each call
// mints a distinct session; earlier sessions stay valid.
func (s *Service) VerifyInvitation(ctx context.Context, code string) (*IssuedSession, error) {
	code = models.NormalizeInvitationCode(code)
	if code == "" {
		return nil, ErrInvalidInput
	}

	invitation, err := s.invitations.FindActiveByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		metrics.InvitationExchanges.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, ErrInvalidInvitation
	}
	if err != nil {
		metrics.InvitationExchanges.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("auth service: lookup invitation: %w", err)
	}

	session, err := s.issueSession(ctx, invitation)
	if err != nil {
		metrics.InvitationExchanges.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}

	if err := s.invitations.MarkUsed(ctx, code); err != nil {
		s.log.Warn("failed to record invitation use",
			zap.Uint("user_id", invitation.ID),
			zap.Error(err),
		)
	}

	metrics.InvitationExchanges.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info("session issued",
		zap.Uint("user_id", invitation.ID),
		zap.String("username", invitation.Username),
		zap.Time("expires_at", session.ExpiresAt),
	)

	return &IssuedSession{
		SessionToken: session.SessionToken,
		UserID:       session.UserID,
		Username:     session.Username,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *Service) issueSession(ctx context.Context, invitation *models.Invitation) (*models.Session, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token, err := s.tokens.Generate()
		if err != nil {
			return nil, fmt.Errorf("auth service: generate token: %w", err)
		}

		now := s.now().UTC()
		session := &models.Session{
			SessionToken: token,
			UserID:       invitation.ID,
			Username:     invitation.Username,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.ttl),
		}

		err = s.sessions.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrTokenConflict) {
			return nil, fmt.Errorf("auth service: create session: %w", err)
		}
		s.log.Warn("session token collision, regenerating", zap.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("auth service: create session: %w", ErrTokenConflict)
}

// VerifySession resolves a token to its identity. Expiry is never extended.
func (s *Service) VerifySession(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.sessions.FindValidByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		metrics.SessionValidations.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, ErrInvalidSession
	}
	if err != nil {
		metrics.SessionValidations.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("auth service: lookup session: %w", err)
	}

	metrics.SessionValidations.WithLabelValues(metrics.ResultValid).Inc()
	return &Identity{UserID: session.UserID, Username: session.Username}, nil
}

// Logout deletes the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidInput
	}

	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("auth service: logout: %w", err)
	}

	metrics.Logouts.Inc()
	return nil
}

// ListInvitations returns every invitation, newest first, including inactive ones.
func (s *Service) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	invitations, err := s.invitations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth service: list invitations: %w", err)
	}
	return invitations, nil
}
