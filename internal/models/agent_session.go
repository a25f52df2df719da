package models

import "gorm.io/datatypes"

// AgentSession is a conversation record persisted by the agent playground.
// Timestamps are unix seconds.
type AgentSession struct {
	SessionID string         `gorm:"primaryKey;size:64" json:"session_id"`
	AgentID   string         `gorm:"size:128;not null;index" json:"agent_id"`
	UserID    *string        `gorm:"size:255;index" json:"user_id"`
	Memory    datatypes.JSON `json:"memory"`
	CreatedAt int64          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AgentSession) TableName() string { return "agent_sessions" }
