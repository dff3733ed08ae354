package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"modguard/internal/common"
	"modguard/internal/dbmysql"
)

// ---- In-memory fake ----

type fakeMetricsStore struct {
	existingTypes []string
	processed     int64
	flagCounts    map[string]int64
	statusCounts  map[string]int64
	avgTime       float64
	stored        []dbmysql.ModerationMetric

	created     []dbmysql.ModerationMetric
	createCalls int
}

func (s *fakeMetricsStore) MetricTypesForDate(ctx context.Context, date time.Time) ([]string, error) {
	return s.existingTypes, nil
}

func (s *fakeMetricsStore) CountStatusesUpdatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	return s.processed, nil
}

func (s *fakeMetricsStore) FlagTypeCountsBetween(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	return s.flagCounts, nil
}

func (s *fakeMetricsStore) StatusCountsBetween(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	return s.statusCounts, nil
}

func (s *fakeMetricsStore) AverageProcessingTimeBetween(ctx context.Context, start, end time.Time) (float64, error) {
	return s.avgTime, nil
}

func (s *fakeMetricsStore) CreateMetrics(ctx context.Context, rows []dbmysql.ModerationMetric) error {
	s.createCalls++
	s.created = append(s.created, rows...)
	return nil
}

func (s *fakeMetricsStore) ListMetricsBetween(ctx context.Context, start, end time.Time) ([]dbmysql.ModerationMetric, error) {
	return s.stored, nil
}

func newTestAggregator(store *fakeMetricsStore) *Aggregator {
	a := NewAggregator(store, zap.NewNop())
	a.now = func() time.Time {
		return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	}
	return a
}

// ---- GenerateDaily ----

func TestGenerateDailyWritesAllTypes(t *testing.T) {
	store := &fakeMetricsStore{
		processed:    42,
		flagCounts:   map[string]int64{"violence": 3, "profanity": 7},
		statusCounts: map[string]int64{"approved": 30, "rejected": 5, "pending": 7},
		avgTime:      0.25,
	}
	a := newTestAggregator(store)

	require.NoError(t, a.GenerateDaily(context.Background()))
	require.Len(t, store.created, 4)

	byType := map[string]dbmysql.ModerationMetric{}
	for _, row := range store.created {
		byType[row.MetricType] = row
		assert.Equal(t, "2026-08-23", row.MetricDate.Format("2006-01-02"))
	}

	assert.Equal(t, common.JSONMap{"count": int64(42)}, byType[TypeDailyProcessed].MetricValue)
	assert.Equal(t, common.JSONMap{"violence": int64(3), "profanity": int64(7)}, byType[TypeFlagDistribution].MetricValue)
	assert.Equal(t, common.JSONMap{"approved": int64(30), "rejected": int64(5), "pending": int64(7)}, byType[TypeStatusDistribution].MetricValue)
	assert.Equal(t, common.JSONMap{"average_seconds": 0.25}, byType[TypeAvgProcessingTime].MetricValue)
}

func TestGenerateDailySkipsExistingTypes(t *testing.T) {
	store := &fakeMetricsStore{
		existingTypes: []string{TypeDailyProcessed, TypeFlagDistribution},
	}
	a := newTestAggregator(store)

	require.NoError(t, a.GenerateDaily(context.Background()))
	require.Len(t, store.created, 2)
	for _, row := range store.created {
		assert.NotEqual(t, TypeDailyProcessed, row.MetricType)
		assert.NotEqual(t, TypeFlagDistribution, row.MetricType)
	}
}

func TestGenerateDailyIsIdempotent(t *testing.T) {
	store := &fakeMetricsStore{
		existingTypes: []string{
			TypeDailyProcessed,
			TypeFlagDistribution,
			TypeStatusDistribution,
			TypeAvgProcessingTime,
		},
	}
	a := newTestAggregator(store)

	require.NoError(t, a.GenerateDaily(context.Background()))
	assert.Zero(t, store.createCalls)
}

// ---- GetMetrics ----

func TestGetMetricsFillsGaps(t *testing.T) {
	yesterday := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	store := &fakeMetricsStore{
		stored: []dbmysql.ModerationMetric{
			{
				MetricDate:  yesterday,
				MetricType:  TypeDailyProcessed,
				MetricValue: common.JSONMap{"count": float64(12)},
			},
		},
	}
	a := newTestAggregator(store)

	series, err := a.GetMetrics(context.Background(), 3)
	require.NoError(t, err)

	processed := series[TypeDailyProcessed]
	require.Len(t, processed, 3)

	// Date order, placeholders on the empty days.
	assert.Equal(t, "2026-08-21", processed[0].Date)
	assert.Equal(t, common.JSONMap{"count": 0}, processed[0].Value)
	assert.Equal(t, "2026-08-22", processed[1].Date)
	assert.Equal(t, common.JSONMap{"count": float64(12)}, processed[1].Value)
	assert.Equal(t, "2026-08-23", processed[2].Date)
	assert.Equal(t, common.JSONMap{"count": 0}, processed[2].Value)
}

func TestGetMetricsEmptyStoreReturnsSampleSeries(t *testing.T) {
	a := newTestAggregator(&fakeMetricsStore{})

	series, err := a.GetMetrics(context.Background(), 7)
	require.NoError(t, err)

	for _, metricType := range []string{
		TypeDailyProcessed,
		TypeFlagDistribution,
		TypeStatusDistribution,
		TypeAvgProcessingTime,
	} {
		values := series[metricType]
		require.Len(t, values, 7, metricType)
		for i := 1; i < len(values); i++ {
			assert.Less(t, values[i-1].Date, values[i].Date)
		}
	}

	for _, dv := range series[TypeStatusDistribution] {
		assert.Len(t, dv.Value, 3)
	}
}

func TestGetMetricsDefaultsWindow(t *testing.T) {
	a := newTestAggregator(&fakeMetricsStore{})

	series, err := a.GetMetrics(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, series[TypeDailyProcessed], 7)
}
