package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"huts4u-backend/config"
	"huts4u-backend/internal/api"
	"huts4u-backend/internal/db"
	"huts4u-backend/internal/store"
	"huts4u-backend/internal/syncer"
	"huts4u-backend/internal/ttlcache"
)

// NewLogger builds a colored console logger at level.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), lvl)

	return zap.New(core).Sugar(), nil
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()
	logger.Infof("configuration loaded successfully from %s", configPath)

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Warn("VAPID keys are not configured; room alerts are disabled.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	responses := ttlcache.New(cfg.Server.CacheTTL, nil)

	syncSvc := syncer.NewService(cfg, appStore, responses, logger)
	go syncSvc.Run(ctx)

	router, err := api.NewRouter(cfg, appStore, responses, &webpushOptions, logger)
	if err != nil {
		logger.Fatalf("failed to build router: %v", err)
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Info("Server gracefully stopped")
}
