package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/agentauth/internal/auth"
	appErrors "github.com/charlesng35/agentauth/pkg/errors"
	"github.com/charlesng35/agentauth/pkg/logger"
	"github.com/charlesng35/agentauth/pkg/response"
)

// AuthHandler exposes the invitation/session endpoints.
type AuthHandler struct {
	svc *auth.Service
	log *zap.Logger
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc, log: logger.WithModule("http")}
}

type verifyInvitationRequest struct {
	InvitationCode string `json:"invitation_code" validate:"required,notblank"`
}

type sessionTokenRequest struct {
	SessionToken string `json:"session_token" validate:"required,notblank"`
}

type verifyInvitationResponse struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"session_token"`
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	ExpiresAt    string `json:"expires_at"`
}

type verifySessionResponse struct {
	Success  bool   `json:"success"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Valid    bool   `json:"valid"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

type invitationRecord struct {
	InvitationCode string  `json:"invitation_code"`
	Username       string  `json:"username"`
	CreatedAt      string  `json:"created_at"`
	UsedAt         *string `json:"used_at"`
	IsActive       bool    `json:"is_active"`
}

type listInvitationsResponse struct {
	Invitations []invitationRecord `json:"invitations"`
}

// POST /api/auth/verify-invitation
func (h *AuthHandler) VerifyInvitation(c *gin.Context) {
	var req verifyInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	issued, err := h.svc.VerifyInvitation(requestContext(c), req.InvitationCode)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, verifyInvitationResponse{
		Success:      true,
		SessionToken: issued.SessionToken,
		UserID:       issued.UserID,
		Username:     issued.Username,
		ExpiresAt:    formatTimestamp(issued.ExpiresAt),
	})
}

// POST /api/auth/verify-session
func (h *AuthHandler) VerifySession(c *gin.Context) {
	var req sessionTokenRequest
	if !bindAndValidate(c, &req) {
		return
	}

	identity, err := h.svc.VerifySession(requestContext(c), req.SessionToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, verifySessionResponse{
		Success:  true,
		UserID:   identity.UserID,
		Username: identity.Username,
		Valid:    true,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req sessionTokenRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.svc.Logout(requestContext(c), req.SessionToken); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, logoutResponse{Success: true})
}

// GET /api/auth/invitations
func (h *AuthHandler) ListInvitations(c *gin.Context) {
	invitations, err := h.svc.ListInvitations(requestContext(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	records := make([]invitationRecord, 0, len(invitations))
	for _, inv := range invitations {
		record := invitationRecord{
			InvitationCode: inv.InvitationCode,
			Username:       inv.Username,
			CreatedAt:      formatTimestamp(inv.CreatedAt),
			IsActive:       inv.IsActive,
		}
		if inv.UsedAt != nil {
			used := formatTimestamp(*inv.UsedAt)
			record.UsedAt = &used
		}
		records = append(records, record)
	}

	response.Success(c, http.StatusOK, listInvitationsResponse{Invitations: records})
}

func (h *AuthHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		response.Error(c, appErrors.ErrBadRequest)
	case errors.Is(err, auth.ErrInvalidInvitation):
		response.Error(c, appErrors.ErrInvalidInvitation)
	case errors.Is(err, auth.ErrInvalidSession):
		response.Error(c, appErrors.ErrInvalidSession)
	default:
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
