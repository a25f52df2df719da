package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/agentauth/internal/api"
	"github.com/charlesng35/agentauth/internal/app"
	"github.com/charlesng35/agentauth/internal/auth"
	sharedtestutil "github.com/charlesng35/agentauth/internal/database/testutil"
	"github.com/charlesng35/agentauth/internal/playground"
)

// DefaultAgents mirrors the shipped playground agent list.
var DefaultAgents = []string{"web_agent", "finance_agent", "image_agent"}

// Clock is a manually advanced time source shared by the stores and service.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T           *testing.T
	DB          *gorm.DB
	Router      *gin.Engine
	Clock       *Clock
	Auth        *auth.Service
	Invitations *auth.InvitationStore
	Sessions    *auth.SessionStore
	AgentStore  *playground.Store
}

// NewEnv provisions a fresh handler test environment with migrations and the
// default invitations applied. Sessions last one hour.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())
	clock := &Clock{now: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}

	authSvc, invitations, sessions, err := auth.NewServiceFromDB(db, auth.Config{
		SessionTTL: time.Hour,
		Clock:      clock.Now,
	})
	require.NoError(t, err)

	store, err := playground.NewStore(db)
	require.NoError(t, err)
	pgSvc, err := playground.NewService(store, DefaultAgents)
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Prometheus.Endpoint = "/metrics"

	router, err := api.NewRouter(api.Dependencies{Config: cfg, Auth: authSvc, Playground: pgSvc})
	require.NoError(t, err)

	return &Env{
		T:           t,
		DB:          db,
		Router:      router,
		Clock:       clock,
		Auth:        authSvc,
		Invitations: invitations,
		Sessions:    sessions,
		AgentStore:  store,
	}
}

// ErrorPayload is the body written for failed requests.
type ErrorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// SessionPayload mirrors POST /api/auth/verify-invitation.
type SessionPayload struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"session_token"`
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	ExpiresAt    string `json:"expires_at"`
}

// Exchange trades an invitation code for a session and asserts success.
func (e *Env) Exchange(code string) SessionPayload {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/verify-invitation", map[string]string{"invitation_code": code})
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var out SessionPayload
	DecodeJSON(e.T, w, &out)
	require.True(e.T, out.Success)
	require.NotEmpty(e.T, out.SessionToken)
	return out
}

// DecodeJSON unmarshals the recorder body into dest.
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

// DecodeError parses an error body.
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorPayload {
	t.Helper()
	var out ErrorPayload
	DecodeJSON(t, w, &out)
	require.False(t, out.Success)
	return out
}

// Request executes an HTTP request against the test router. Non-nil bodies are
// JSON encoded unless they are already raw strings.
func (e *Env) Request(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(e.T, err)
		buf.Write(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
