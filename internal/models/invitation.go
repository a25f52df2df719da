package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Invitation is a pre-provisioned code that identifies exactly one user.
type Invitation struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	InvitationCode string     `gorm:"size:64;not null;uniqueIndex" json:"invitation_code"`
	Username       string     `gorm:"size:255;not null" json:"username"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UsedAt         *time.Time `json:"used_at"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
}

func (Invitation) TableName() string { return "invitations" }

// BeforeCreate stores codes in their canonical form.
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	i.InvitationCode = NormalizeInvitationCode(i.InvitationCode)
	i.Username = strings.TrimSpace(i.Username)
	return nil
}

// NormalizeInvitationCode trims surrounding whitespace and uppercases the code.
func NormalizeInvitationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
