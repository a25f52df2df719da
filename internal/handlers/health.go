package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/agentauth/internal/monitoring"
	"github.com/charlesng35/agentauth/pkg/response"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "auth_server"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health reports liveness. It touches no dependencies.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, healthResponse{Status: "ok", Service: ServiceName})
	}
}

// Readiness runs the dependency probes; 503 unless every probe is up.
func Readiness(probes *monitoring.Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := probes.Evaluate(requestContext(c))
		status := http.StatusOK
		if !report.Ready() {
			status = http.StatusServiceUnavailable
		}
		response.Success(c, status, report)
	}
}
