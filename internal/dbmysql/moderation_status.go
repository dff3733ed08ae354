package dbmysql

import (
	"time"
)

// ModerationStatus is the one-to-one verdict for a content item. Every
// mutation is paired with a ModerationAction row in the same transaction.
type ModerationStatus struct {
	StatusID        uint64   `gorm:"primaryKey;autoIncrement;column:status_id"`
	ContentID       uint64   `gorm:"column:content_id;uniqueIndex;not null"`
	Status          string   `gorm:"type:varchar(20);column:status;not null;default:pending"`
	ModerationScore float64  `gorm:"column:moderation_score"`
	IsAutomated     bool     `gorm:"column:is_automated;default:true"`
	ProcessingTime  *float64 `gorm:"column:processing_time"` // seconds, null for rows predating the pipeline

	LastUpdated time.Time `gorm:"column:last_updated;index"`
}

func (ModerationStatus) TableName() string {
	return "moderation_statuses"
}
