package dbmysql

import (
	"time"

	"modguard/internal/common"
)

// ContentFlag records one category whose score cleared the reporting
// threshold for a content item. Created at classification time, never mutated.
type ContentFlag struct {
	FlagID      uint64         `gorm:"primaryKey;autoIncrement;column:flag_id"`
	ContentID   uint64         `gorm:"column:content_id;index;not null"`
	FlagType    string         `gorm:"type:varchar(50);column:flag_type;not null;index"`
	FlagScore   float64        `gorm:"column:flag_score;not null"`
	FlagDetails common.JSONMap `gorm:"type:json;column:flag_details"`
	CreatedAt   time.Time      `gorm:"column:created_at;index"`
}

func (ContentFlag) TableName() string {
	return "content_flags"
}
