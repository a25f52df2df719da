package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/agentauth/internal/handlers/testutil"
)

type verifySessionPayload struct {
	Success  bool   `json:"success"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Valid    bool   `json:"valid"`
}

type invitationsPayload struct {
	Invitations []struct {
		InvitationCode string  `json:"invitation_code"`
		Username       string  `json:"username"`
		CreatedAt      string  `json:"created_at"`
		UsedAt         *string `json:"used_at"`
		IsActive       bool    `json:"is_active"`
	} `json:"invitations"`
}

func TestVerifyInvitationIssuesSession(t *testing.T) {
	env := testutil.NewEnv(t)

	session := env.Exchange("jk23")
	require.Equal(t, "Lorenzo", session.Username)
	require.NotZero(t, session.UserID)

	expires, err := time.Parse(time.RFC3339Nano, session.ExpiresAt)
	require.NoError(t, err)
	require.True(t, expires.Equal(env.Clock.Now().Add(time.Hour)))

	second := env.Exchange("JK23")
	require.NotEqual(t, session.SessionToken, second.SessionToken)
	require.Equal(t, session.UserID, second.UserID)
}

func TestVerifyInvitationValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	cases := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{name: "missing field", body: map[string]string{}, status: http.StatusBadRequest, message: "Invitation code is required"},
		{name: "empty body", body: "", status: http.StatusBadRequest, message: "Invitation code is required"},
		{name: "blank code", body: map[string]string{"invitation_code": "   "}, status: http.StatusBadRequest, message: "Invitation code is required"},
		{name: "malformed json", body: "{", status: http.StatusBadRequest, message: "invalid JSON payload"},
		{name: "unknown code", body: map[string]string{"invitation_code": "NOPE"}, status: http.StatusUnauthorized, message: "Invalid invitation code"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.Request(http.MethodPost, "/api/auth/verify-invitation", tc.body)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			require.Equal(t, tc.message, testutil.DecodeError(t, w).Error)
		})
	}
}

func TestVerifyInvitationRejectsDisabledCode(t *testing.T) {
	env := testutil.NewEnv(t)
	require.NoError(t, env.Invitations.SetActive(context.Background(), "JK46", false))

	w := env.Request(http.MethodPost, "/api/auth/verify-invitation", map[string]string{"invitation_code": "JK46"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid invitation code", testutil.DecodeError(t, w).Error)
}

func TestVerifySessionLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.Exchange("JK46")

	w := env.Request(http.MethodPost, "/api/auth/verify-session", map[string]string{"session_token": session.SessionToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var verified verifySessionPayload
	testutil.DecodeJSON(t, w, &verified)
	require.True(t, verified.Success)
	require.True(t, verified.Valid)
	require.Equal(t, "Simone", verified.Username)
	require.Equal(t, session.UserID, verified.UserID)

	env.Clock.Advance(time.Hour)

	w = env.Request(http.MethodPost, "/api/auth/verify-session", map[string]string{"session_token": session.SessionToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid or expired session", testutil.DecodeError(t, w).Error)
}

func TestVerifySessionValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/verify-session", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Session token is required", testutil.DecodeError(t, w).Error)

	w = env.Request(http.MethodPost, "/api/auth/verify-session", map[string]string{"session_token": "unknown"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutInvalidatesOnlyThatSession(t *testing.T) {
	env := testutil.NewEnv(t)
	first := env.Exchange("JK23")
	second := env.Exchange("JK23")

	w := env.Request(http.MethodPost, "/api/auth/logout", map[string]string{"session_token": first.SessionToken})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":true}`, w.Body.String())

	w = env.Request(http.MethodPost, "/api/auth/verify-session", map[string]string{"session_token": first.SessionToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.Request(http.MethodPost, "/api/auth/verify-session", map[string]string{"session_token": second.SessionToken})
	require.Equal(t, http.StatusOK, w.Code)

	// unknown and repeated tokens still succeed
	w = env.Request(http.MethodPost, "/api/auth/logout", map[string]string{"session_token": first.SessionToken})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Request(http.MethodPost, "/api/auth/logout", map[string]string{"session_token": " "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Session token is required", testutil.DecodeError(t, w).Error)
}

func TestListInvitations(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Exchange("JK23")

	w := env.Request(http.MethodGet, "/api/auth/invitations", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out invitationsPayload
	testutil.DecodeJSON(t, w, &out)
	require.Len(t, out.Invitations, 2)

	byCode := map[string]int{}
	for i, inv := range out.Invitations {
		byCode[inv.InvitationCode] = i
		require.True(t, inv.IsActive)
		_, err := time.Parse(time.RFC3339Nano, inv.CreatedAt)
		require.NoError(t, err)
	}

	used := out.Invitations[byCode["JK23"]]
	require.Equal(t, "Lorenzo", used.Username)
	require.NotNil(t, used.UsedAt)
	require.Nil(t, out.Invitations[byCode["JK46"]].UsedAt)
}
