package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newCORSRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS(origins...))
	r.POST("/api/auth/verify-session", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestCORSAllowsAnyOriginByDefault(t *testing.T) {
	r := newCORSRouter()

	preflight := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/verify-session", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(preflight, req)

	require.Equal(t, http.StatusNoContent, preflight.Code)
	require.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, preflight.Header().Get("Access-Control-Allow-Methods"), "POST")
	require.Contains(t, preflight.Header().Get("Access-Control-Allow-Headers"), "Content-Type")

	w := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/verify-session", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardEntry(t *testing.T) {
	r := newCORSRouter("https://app.example.com", "*")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-session", nil)
	req.Header.Set("Origin", "https://elsewhere.test")
	r.ServeHTTP(w, req)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedOrigins(t *testing.T) {
	r := newCORSRouter("https://app.example.com/")

	allowed := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-session", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(allowed, req)
	require.Equal(t, "https://app.example.com", allowed.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", allowed.Header().Get("Vary"))

	denied := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/verify-session", nil)
	req.Header.Set("Origin", "https://evil.test")
	r.ServeHTTP(denied, req)
	require.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}
