package app

import (
	"github.com/charlesng35/agentauth/internal/auth"
	"github.com/charlesng35/agentauth/internal/database"
	"github.com/charlesng35/agentauth/pkg/crypto"
)

// ServiceConfig converts AuthConfig into auth.Service parameters.
func (c AuthConfig) ServiceConfig() auth.Config {
	ttl := c.Session.TTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}

	bytes := c.Session.TokenBytes
	if bytes < crypto.MinTokenBytes {
		bytes = crypto.MinTokenBytes
	}

	return auth.Config{
		SessionTTL: ttl,
		TokenBytes: bytes,
	}
}

// SeedInvitations converts the configured bootstrap invitations for the database seeder.
func (c AuthConfig) SeedInvitations() []database.BootstrapInvitation {
	seeds := make([]database.BootstrapInvitation, 0, len(c.BootstrapInvitations))
	for _, inv := range c.BootstrapInvitations {
		seeds = append(seeds, database.BootstrapInvitation{Code: inv.Code, Username: inv.Username})
	}
	return seeds
}

// ConnectionConfig converts DatabaseConfig into database.Config, picking the
// host block that matches the driver.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	cfg := database.Config{
		Driver: c.Driver,
		Path:   c.Path,
		DSN:    c.DSN,
	}

	var host DBAuthConfig
	switch c.Driver {
	case "postgres", "postgresql":
		host = c.Postgres
	case "mysql", "mariadb":
		host = c.MySQL
	default:
		return cfg
	}

	cfg.Host = host.Host
	cfg.Port = host.Port
	cfg.Name = host.Database
	cfg.User = host.Username
	cfg.Password = host.Password
	cfg.Options = host.Options
	return cfg
}
