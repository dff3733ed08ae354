package dbmysql

import (
	"time"
)

// ModerationSetting is a named string-valued configuration record. Not on
// the content hot path; the automated policy constants are compiled in and
// mirrored here for operator visibility.
type ModerationSetting struct {
	SettingID          uint64    `gorm:"primaryKey;autoIncrement;column:setting_id"`
	SettingName        string    `gorm:"type:varchar(100);column:setting_name;uniqueIndex;not null"`
	SettingValue       string    `gorm:"type:varchar(255);column:setting_value;not null"`
	SettingDescription string    `gorm:"type:text;column:setting_description"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (ModerationSetting) TableName() string {
	return "moderation_settings"
}
