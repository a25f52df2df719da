package models

import "time"

// Session binds an opaque bearer token to the invitation that minted it.
type Session struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionToken string      `gorm:"size:128;not null;uniqueIndex" json:"-"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	Invitation   *Invitation `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Username     string      `gorm:"size:255;not null" json:"username"`
	CreatedAt    time.Time   `json:"created_at"`
	ExpiresAt    time.Time   `gorm:"not null;index" json:"expires_at"`
}

func (Session) TableName() string { return "sessions" }

// ValidAt reports whether the session is still usable at the given instant.
func (s *Session) ValidAt(now time.Time) bool {
	return s != nil && s.ExpiresAt.After(now)
}
