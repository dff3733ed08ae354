// Package metrics aggregates daily moderation activity into queryable
// per-day, per-type rows.
package metrics

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"modguard/internal/common"
	"modguard/internal/dbmysql"
)

// Metric types produced by the daily aggregation.
const (
	TypeDailyProcessed     = "daily_processed"
	TypeFlagDistribution   = "flag_distribution"
	TypeStatusDistribution = "status_distribution"
	TypeAvgProcessingTime  = "avg_processing_time"
)

// Store is the persistence surface the aggregator needs.
type Store interface {
	MetricTypesForDate(ctx context.Context, date time.Time) ([]string, error)
	CountStatusesUpdatedBetween(ctx context.Context, start, end time.Time) (int64, error)
	FlagTypeCountsBetween(ctx context.Context, start, end time.Time) (map[string]int64, error)
	StatusCountsBetween(ctx context.Context, start, end time.Time) (map[string]int64, error)
	AverageProcessingTimeBetween(ctx context.Context, start, end time.Time) (float64, error)
	CreateMetrics(ctx context.Context, rows []dbmysql.ModerationMetric) error
	ListMetricsBetween(ctx context.Context, start, end time.Time) ([]dbmysql.ModerationMetric, error)
}

// Aggregator computes and serves daily moderation metrics.
type Aggregator struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewAggregator(store Store, log *zap.Logger) *Aggregator {
	return &Aggregator{store: store, log: log, now: time.Now}
}

// DatedValue is one day's value of a metric series.
type DatedValue struct {
	Date  string         `json:"date"`
	Value common.JSONMap `json:"value"`
}

// GenerateDaily computes today's metrics from the moderation tables.
// Each (date, type) pair is written at most once; types that already
// have a row for today are skipped, so the job can run repeatedly.
func (a *Aggregator) GenerateDaily(ctx context.Context) error {
	today := a.now().UTC().Truncate(24 * time.Hour)
	dayStart := today
	dayEnd := today.Add(24*time.Hour - time.Nanosecond)

	existing, err := a.store.MetricTypesForDate(ctx, today)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(existing))
	for _, metricType := range existing {
		done[metricType] = true
	}

	var rows []dbmysql.ModerationMetric
	add := func(metricType string, value common.JSONMap) {
		rows = append(rows, dbmysql.ModerationMetric{
			MetricDate:  today,
			MetricType:  metricType,
			MetricValue: value,
			CreatedAt:   a.now(),
		})
	}

	if !done[TypeDailyProcessed] {
		count, err := a.store.CountStatusesUpdatedBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return err
		}
		add(TypeDailyProcessed, common.JSONMap{"count": count})
	}

	if !done[TypeFlagDistribution] {
		flagCounts, err := a.store.FlagTypeCountsBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return err
		}
		value := common.JSONMap{}
		for flagType, count := range flagCounts {
			value[flagType] = count
		}
		add(TypeFlagDistribution, value)
	}

	if !done[TypeStatusDistribution] {
		statusCounts, err := a.store.StatusCountsBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return err
		}
		value := common.JSONMap{}
		for status, count := range statusCounts {
			value[status] = count
		}
		add(TypeStatusDistribution, value)
	}

	if !done[TypeAvgProcessingTime] {
		average, err := a.store.AverageProcessingTimeBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return err
		}
		add(TypeAvgProcessingTime, common.JSONMap{"average_seconds": average})
	}

	if len(rows) == 0 {
		a.log.Debug("daily metrics already generated", zap.Time("date", today))
		return nil
	}
	if err := a.store.CreateMetrics(ctx, rows); err != nil {
		return err
	}

	a.log.Info("daily metrics generated",
		zap.Time("date", today),
		zap.Int("metrics", len(rows)))
	return nil
}

// GetMetrics returns the last days of metric series keyed by type. Days
// with no stored row for a type get a zero-valued placeholder, so every
// returned series covers the full window in date order. A fully empty
// store yields a synthetic demonstration dataset instead.
func (a *Aggregator) GetMetrics(ctx context.Context, days int) (map[string][]DatedValue, error) {
	if days <= 0 {
		days = 7
	}
	end := a.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	stored, err := a.store.ListMetricsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return a.sampleMetrics(end, days), nil
	}

	series := make(map[string][]DatedValue)
	seen := make(map[string]map[string]bool)
	for _, row := range stored {
		date := row.MetricDate.Format("2006-01-02")
		series[row.MetricType] = append(series[row.MetricType], DatedValue{
			Date:  date,
			Value: row.MetricValue,
		})
		if seen[row.MetricType] == nil {
			seen[row.MetricType] = make(map[string]bool)
		}
		seen[row.MetricType][date] = true
	}

	for metricType := range series {
		for i := 0; i < days; i++ {
			date := end.AddDate(0, 0, -i).Format("2006-01-02")
			if seen[metricType][date] {
				continue
			}
			series[metricType] = append(series[metricType], DatedValue{
				Date:  date,
				Value: placeholderValue(metricType),
			})
		}
		sortByDate(series[metricType])
	}
	return series, nil
}

func placeholderValue(metricType string) common.JSONMap {
	switch metricType {
	case TypeDailyProcessed:
		return common.JSONMap{"count": 0}
	case TypeAvgProcessingTime:
		return common.JSONMap{"average_seconds": 0}
	default:
		return common.JSONMap{}
	}
}

// sampleMetrics builds plausible-looking series for dashboards running
// against an empty database.
func (a *Aggregator) sampleMetrics(end time.Time, days int) map[string][]DatedValue {
	flagTypes := []string{"profanity", "hate_speech", "violence", "sexual_content", "harassment"}
	statusTypes := []string{common.StatusPending, common.StatusApproved, common.StatusRejected}

	series := map[string][]DatedValue{
		TypeDailyProcessed:     {},
		TypeFlagDistribution:   {},
		TypeStatusDistribution: {},
		TypeAvgProcessingTime:  {},
	}

	for i := 0; i < days; i++ {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")

		series[TypeDailyProcessed] = append(series[TypeDailyProcessed], DatedValue{
			Date:  date,
			Value: common.JSONMap{"count": 50 + rand.Intn(151)},
		})

		flagCounts := common.JSONMap{}
		for _, flagType := range flagTypes {
			if rand.Float64() > 0.2 {
				flagCounts[flagType] = 5 + rand.Intn(46)
			}
		}
		series[TypeFlagDistribution] = append(series[TypeFlagDistribution], DatedValue{
			Date:  date,
			Value: flagCounts,
		})

		statusCounts := common.JSONMap{}
		for _, status := range statusTypes {
			statusCounts[status] = 10 + rand.Intn(61)
		}
		series[TypeStatusDistribution] = append(series[TypeStatusDistribution], DatedValue{
			Date:  date,
			Value: statusCounts,
		})

		seconds := math.Round((0.1+rand.Float64()*1.9)*100) / 100
		series[TypeAvgProcessingTime] = append(series[TypeAvgProcessingTime], DatedValue{
			Date:  date,
			Value: common.JSONMap{"average_seconds": seconds},
		})
	}

	for metricType := range series {
		sortByDate(series[metricType])
	}
	return series
}

func sortByDate(values []DatedValue) {
	sort.Slice(values, func(i, j int) bool {
		return values[i].Date < values[j].Date
	})
}
