package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"modguard/internal/wire"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	app, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Logger.Sync()

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 15*time.Second)
	seedDefaults(seedCtx, app)
	cancelSeed()

	scheduler := startMetricsJob(app)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.Config.Server.Host, app.Config.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		app.Logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info("shutting down server")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		app.Logger.Error("forced shutdown", zap.Error(err))
	}

	app.Logger.Info("server stopped")
}

// seedDefaults creates the default admin reviewer and the policy setting
// records on first boot. Failures are logged, not fatal: the ingest path
// works without them.
func seedDefaults(ctx context.Context, app *wire.Application) {
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		app.Logger.Warn("ADMIN_PASSWORD not set, skipping admin account seed")
	} else {
		if _, err := app.Users.EnsureAdmin(ctx, "admin", "admin@modguard.local", adminPassword); err != nil {
			app.Logger.Error("admin account seed failed", zap.Error(err))
		}
	}

	if err := app.Settings.SeedDefaults(ctx); err != nil {
		app.Logger.Error("settings seed failed", zap.Error(err))
	}
}

// startMetricsJob schedules the daily aggregation when enabled.
func startMetricsJob(app *wire.Application) *cron.Cron {
	if !app.Config.Metrics.Enabled {
		app.Logger.Info("metrics aggregation disabled")
		return nil
	}

	scheduler := cron.New(cron.WithSeconds())
	_, err := scheduler.AddFunc(app.Config.Metrics.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := app.Aggregator.GenerateDaily(ctx); err != nil {
			app.Logger.Error("daily metrics generation failed", zap.Error(err))
		}
	})
	if err != nil {
		app.Logger.Error("metrics job not scheduled",
			zap.String("cron", app.Config.Metrics.CronSpec),
			zap.Error(err))
		return nil
	}

	scheduler.Start()
	app.Logger.Info("metrics job scheduled", zap.String("cron", app.Config.Metrics.CronSpec))
	return scheduler
}
