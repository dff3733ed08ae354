package metrics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"modguard/internal/dbmysql"
)

type typeCount struct {
	Key   string
	Total int64
}

// Repository is the GORM-backed Store for metric aggregation queries.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) MetricTypesForDate(ctx context.Context, date time.Time) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&dbmysql.ModerationMetric{}).
		Where("metric_date = ?", date.Format("2006-01-02")).
		Pluck("metric_type", &types).Error
	if err != nil {
		return nil, fmt.Errorf("list metric types: %w", err)
	}
	return types, nil
}

func (r *Repository) CountStatusesUpdatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.ModerationStatus{}).
		Where("last_updated BETWEEN ? AND ?", start, end).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count processed statuses: %w", err)
	}
	return count, nil
}

func (r *Repository) FlagTypeCountsBetween(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	var rows []typeCount
	err := r.db.WithContext(ctx).
		Model(&dbmysql.ContentFlag{}).
		Select("flag_type AS `key`, COUNT(*) AS total").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("flag_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count flags by type: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Total
	}
	return counts, nil
}

func (r *Repository) StatusCountsBetween(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	var rows []typeCount
	err := r.db.WithContext(ctx).
		Model(&dbmysql.ModerationStatus{}).
		Select("status AS `key`, COUNT(*) AS total").
		Where("last_updated BETWEEN ? AND ?", start, end).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count statuses: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Total
	}
	return counts, nil
}

func (r *Repository) AverageProcessingTimeBetween(ctx context.Context, start, end time.Time) (float64, error) {
	var average *float64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.ModerationStatus{}).
		Select("AVG(processing_time)").
		Where("last_updated BETWEEN ? AND ?", start, end).
		Where("processing_time IS NOT NULL").
		Scan(&average).Error
	if err != nil {
		return 0, fmt.Errorf("average processing time: %w", err)
	}
	if average == nil {
		return 0, nil
	}
	return *average, nil
}

func (r *Repository) CreateMetrics(ctx context.Context, rows []dbmysql.ModerationMetric) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("create metrics: %w", err)
		}
		return nil
	})
}

func (r *Repository) ListMetricsBetween(ctx context.Context, start, end time.Time) ([]dbmysql.ModerationMetric, error) {
	var rows []dbmysql.ModerationMetric
	err := r.db.WithContext(ctx).
		Where("metric_date BETWEEN ? AND ?", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("metric_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	return rows, nil
}
