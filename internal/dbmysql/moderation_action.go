package dbmysql

import (
	"time"
)

// ModerationAction is an append-only audit entry for one disposition change.
// UserID is nil for automated actions. The per-content chain ordered by
// CreatedAt reconstructs the full moderation history.
type ModerationAction struct {
	ActionID       uint64    `gorm:"primaryKey;autoIncrement;column:action_id"`
	ContentID      uint64    `gorm:"column:content_id;index;not null"`
	UserID         *uint64   `gorm:"column:user_id"`
	ActionType     string    `gorm:"type:varchar(50);column:action_type;not null"`
	ActionNotes    string    `gorm:"type:text;column:action_notes"`
	PreviousStatus *string   `gorm:"type:varchar(20);column:previous_status"`
	CreatedAt      time.Time `gorm:"column:created_at;index"`
}

func (ModerationAction) TableName() string {
	return "moderation_actions"
}
