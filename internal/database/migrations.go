package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/agentauth/internal/models"
)

// BootstrapInvitation describes an invitation guaranteed to exist after start-up.
type BootstrapInvitation struct {
	Code     string
	Username string
}

// DefaultBootstrapInvitations are the codes provisioned on a fresh store.
func DefaultBootstrapInvitations() []BootstrapInvitation {
	return []BootstrapInvitation{
		{Code: "JK23", Username: "Lorenzo"},
		{Code: "JK46", Username: "Simone"},
	}
}

// AutoMigrate creates the schema if it does not exist. Safe to run repeatedly.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Invitation{},
		&models.Session{},
		&models.AgentSession{},
	)
}

// SeedInvitations inserts each bootstrap invitation unless its code already
// exists. Existing rows are never modified, so a disabled bootstrap code stays
// disabled across restarts.
func SeedInvitations(db *gorm.DB, seeds []BootstrapInvitation) error {
	for _, seed := range seeds {
		code := models.NormalizeInvitationCode(seed.Code)
		username := strings.TrimSpace(seed.Username)
		if code == "" || username == "" {
			return fmt.Errorf("bootstrap invitation requires code and username (got %q/%q)", seed.Code, seed.Username)
		}

		attrs := models.Invitation{Username: username, IsActive: true}
		if err := db.Where(models.Invitation{InvitationCode: code}).Attrs(attrs).FirstOrCreate(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("seed %s: %w", code, err)
		}
	}
	return nil
}
