package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/agentauth/internal/auth"
	"github.com/charlesng35/agentauth/internal/database"
	"github.com/charlesng35/agentauth/pkg/crypto"
)

const defaultShutdownTimeout = 15 * time.Second

// ApplyRuntimeDefaults repairs values a config file may have blanked or set out
// of range. It returns the keys it changed so callers can log them.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	adjusted := make(map[string]bool)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		cfg.Server.Port = 8001
		adjusted["server.port"] = true
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
		adjusted["server.shutdown_timeout"] = true
	}
	if cfg.Auth.Session.TTL <= 0 {
		cfg.Auth.Session.TTL = auth.DefaultSessionTTL
		adjusted["auth.session.ttl"] = true
	}
	if cfg.Auth.Session.TokenBytes < crypto.MinTokenBytes {
		cfg.Auth.Session.TokenBytes = crypto.MinTokenBytes
		adjusted["auth.session.token_bytes"] = true
	}
	if len(cfg.Auth.BootstrapInvitations) == 0 {
		for _, seed := range database.DefaultBootstrapInvitations() {
			cfg.Auth.BootstrapInvitations = append(cfg.Auth.BootstrapInvitations, InvitationConfig{Code: seed.Code, Username: seed.Username})
		}
		adjusted["auth.bootstrap_invitations"] = true
	}
	if strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint) == "" {
		cfg.Monitoring.Prometheus.Endpoint = "/metrics"
		adjusted["monitoring.prometheus.endpoint"] = true
	}
	if cfg.Maintenance.SessionPurge.Enabled && strings.TrimSpace(cfg.Maintenance.SessionPurge.Schedule) == "" {
		cfg.Maintenance.SessionPurge.Schedule = "@daily"
		adjusted["maintenance.session_purge.schedule"] = true
	}

	return adjusted, nil
}
