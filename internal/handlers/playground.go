package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/agentauth/internal/playground"
	appErrors "github.com/charlesng35/agentauth/pkg/errors"
	"github.com/charlesng35/agentauth/pkg/logger"
	"github.com/charlesng35/agentauth/pkg/response"
)

// PlaygroundHandler serves the user-scoped agent session listing.
type PlaygroundHandler struct {
	svc *playground.Service
	log *zap.Logger
}

func NewPlaygroundHandler(svc *playground.Service) *PlaygroundHandler {
	return &PlaygroundHandler{svc: svc, log: logger.WithModule("http")}
}

// GET /v1/playground/agents/:agent_id/sessions?user_id=
func (h *PlaygroundHandler) ListSessions(c *gin.Context) {
	agentID := c.Param("agent_id")
	userID := strings.TrimSpace(c.Query("user_id"))

	summaries, err := h.svc.ListSessions(requestContext(c), agentID, userID)
	if errors.Is(err, playground.ErrAgentNotFound) {
		response.Error(c, appErrors.NewNotFound("Agent not found"))
		return
	}
	if err != nil {
		h.log.Error("list agent sessions failed", zap.String("agent_id", agentID), zap.Error(err))
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, summaries)
}
