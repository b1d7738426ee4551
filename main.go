package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regdesk/config"
	"regdesk/database"
	"regdesk/logger"
	"regdesk/metrics"
	"regdesk/routers"
	"regdesk/utils"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	appLogger, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	zap.ReplaceGlobals(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	store, err := database.Open(connectCtx, cfg, appLogger)
	cancel()
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	m := metrics.New()
	app := routers.NewApp(routers.Deps{
		Config:  cfg,
		Log:     appLogger,
		Metrics: m,
		Store:   store,
		Intake:  utils.NewFileIntake(cfg.UploadDir, cfg.MaxUploadSize, m),
	})

	go func() {
		appLogger.Info("Server is running", zap.String("port", cfg.Port), zap.String("driver", cfg.DBDriver))
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLogger.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		appLogger.Error("Failed to close database", zap.Error(err))
	}

	appLogger.Info("Server exited")
}
