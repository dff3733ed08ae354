package dbmysql

import (
	"time"

	"modguard/internal/common"
)

// ModerationMetric is one daily aggregate. At most one row exists per
// (metric_date, metric_type); re-running aggregation for a populated pair
// is a no-op, never an overwrite.
type ModerationMetric struct {
	MetricID    uint64         `gorm:"primaryKey;autoIncrement;column:metric_id"`
	MetricDate  time.Time      `gorm:"type:date;column:metric_date;uniqueIndex:idx_metric_date_type;not null"`
	MetricType  string         `gorm:"type:varchar(50);column:metric_type;uniqueIndex:idx_metric_date_type;not null"`
	MetricValue common.JSONMap `gorm:"type:json;column:metric_value;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
}

func (ModerationMetric) TableName() string {
	return "moderation_metrics"
}
