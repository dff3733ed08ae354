package wire

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"modguard/internal/api"
	"modguard/internal/classifier"
	"modguard/internal/config"
	"modguard/internal/dbmongo"
	"modguard/internal/dbmysql"
	"modguard/internal/metrics"
	"modguard/internal/moderation"
	"modguard/internal/training"
	"modguard/pkg/logger"
)

// Application is the fully wired service.
type Application struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *gorm.DB
	Engine     *classifier.Engine
	Store      classifier.ArtifactStore
	Moderation *moderation.Service
	Trainer    *training.Trainer
	Aggregator *metrics.Aggregator
	Settings   *dbmysql.SettingRepository
	Users      *dbmysql.UserRepository
	Handler    *api.Handler
	Router     *mux.Router
}

func ProvideConfig() *config.Config {
	return config.Load()
}

func ProvideLogger(cfg *config.Config) *zap.Logger {
	return logger.New(logger.Config{
		Environment: cfg.Server.Environment,
		LogLevel:    cfg.Logging.Level,
		ServiceName: "modguard",
	})
}

func ProvideDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := dbmysql.NewMySQL(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := dbmysql.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info("database ready",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DatabaseName))
	return db, nil
}

// ProvideArtifactStore picks the model blob store: GridFS when Mongo is
// enabled, the local filesystem otherwise.
func ProvideArtifactStore(cfg *config.Config, log *zap.Logger) (classifier.ArtifactStore, error) {
	if !cfg.Mongo.Enabled {
		log.Info("using file artifact store", zap.String("path", cfg.Model.ArtifactPath))
		return classifier.NewFileStore(cfg.Model.ArtifactPath), nil
	}

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect mongo artifact store: %w", err)
	}
	log.Info("using gridfs artifact store", zap.String("database", cfg.Mongo.DatabaseName))
	return dbmongo.NewArtifactStorage(mongoClient), nil
}

// ProvideEngine builds the engine and loads the persisted artifact if
// one exists. A missing or unreadable artifact leaves the engine in
// untrained fallback mode rather than failing startup.
func ProvideEngine(store classifier.ArtifactStore, log *zap.Logger) *classifier.Engine {
	engine := classifier.NewEngine(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := engine.Load(ctx, store); err != nil {
		log.Warn("no usable model artifact, starting untrained", zap.Error(err))
	}
	return engine
}

func ProvideModerationStore(db *gorm.DB) moderation.Store {
	return moderation.NewRepository(db)
}

func ProvideScorer(engine *classifier.Engine) moderation.Scorer {
	return engine
}

func ProvideMetricsStore(db *gorm.DB) metrics.Store {
	return metrics.NewRepository(db)
}

func ProvideHandler(cfg *config.Config, svc *moderation.Service, trainer *training.Trainer, aggregator *metrics.Aggregator, settings *dbmysql.SettingRepository, scorer moderation.Scorer, log *zap.Logger) *api.Handler {
	return api.NewHandler(svc, trainer, aggregator, settings, scorer, cfg.Model.DataDir, log)
}

func ProvideRouter(h *api.Handler, log *zap.Logger) *mux.Router {
	return api.NewRouter(h, log)
}
