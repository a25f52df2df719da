package response

import (
	"net/http"

	appErrors "github.com/charlesng35/agentauth/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the payload written for every failed request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// Success writes the payload as-is. Each endpoint owns its response record type.
func Success(c *gin.Context, statusCode int, payload interface{}) {
	c.JSON(statusCode, payload)
}

// Error writes a JSON error response derived from an AppError. Internal causes
// are never rendered.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorBody{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}
