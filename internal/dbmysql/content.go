package dbmysql

import (
	"time"

	"modguard/internal/common"
)

// Content is one submitted item going through the moderation pipeline.
// Immutable after creation; the moderation verdict lives on ModerationStatus.
type Content struct {
	ContentID       uint64         `gorm:"primaryKey;autoIncrement;column:content_id"`
	UserID          *uint64        `gorm:"column:user_id;index"`
	ContentType     string         `gorm:"type:varchar(50);column:content_type;not null"`
	ContentText     string         `gorm:"type:text;column:content_text;not null"`
	OriginalContent string         `gorm:"type:text;column:original_content;not null"`
	ContentMetadata common.JSONMap `gorm:"type:json;column:content_metadata"`
	CreatedAt       time.Time      `gorm:"column:created_at;index"`

	Status  *ModerationStatus  `gorm:"foreignKey:ContentID"`
	Flags   []ContentFlag      `gorm:"foreignKey:ContentID"`
	Actions []ModerationAction `gorm:"foreignKey:ContentID"`
}

func (Content) TableName() string {
	return "contents"
}
