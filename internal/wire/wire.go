//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"modguard/internal/dbmysql"
	"modguard/internal/metrics"
	"modguard/internal/moderation"
	"modguard/internal/training"
)

// InitializeApplication assembles the full service graph. The real body
// lives in wire_gen.go.
func InitializeApplication() (*Application, error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideDatabase,
		ProvideArtifactStore,
		ProvideEngine,
		ProvideModerationStore,
		ProvideScorer,
		moderation.NewService,
		training.NewTrainer,
		ProvideMetricsStore,
		metrics.NewAggregator,
		dbmysql.NewSettingRepository,
		dbmysql.NewUserRepository,
		ProvideHandler,
		ProvideRouter,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
