package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taskmanager/taskmanager/internal/api"
	"github.com/taskmanager/taskmanager/internal/config"
	"github.com/taskmanager/taskmanager/internal/health"
	"github.com/taskmanager/taskmanager/internal/store"
	"github.com/taskmanager/taskmanager/internal/tasks"
)

// AppState holds all application services
type AppState struct {
	Backend     store.Backend
	Store       *store.Store
	TaskService tasks.TaskManager
	Health      *health.Manager
	Logger      *zap.Logger
	Config      *config.Config
}

func main() {
	// Load configuration
	config.Load()

	logger := initLogger()
	defer logger.Sync()

	ctx := context.Background()

	as, err := newAppState(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	if err := as.Health.StartupHealthCheck(ctx); err != nil {
		logger.Fatal("Startup health check failed", zap.Error(err))
	}

	router := setupRouter(as)

	addr := fmt.Sprintf("%s:%d", config.Http().Host, config.Http().Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	done := setupSignalHandler(as, server, logger)

	logger.Info("Starting task manager server",
		zap.String("address", addr),
		zap.String("storage_backend", as.Backend.Name()))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState opens the configured backend and wires the services on top of it
func newAppState(ctx context.Context, logger *zap.Logger) (*AppState, error) {
	storageConfig := config.Storage()

	logger.Info("Storage configuration", zap.String("backend", storageConfig.Backend))

	backend, err := store.OpenBackend(ctx, storageConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage backend: %w", storageConfig.Backend, err)
	}

	taskStore := store.NewStore(backend)
	if err := taskStore.Init(ctx); err != nil {
		_ = backend.Close(ctx)
		return nil, fmt.Errorf("failed to initialize collections: %w", err)
	}

	healthManager := health.NewManager(logger)
	healthManager.AddChecker(health.NewStoreHealthChecker(backend))
	healthManager.AddChecker(health.NewConfigHealthChecker(config.Get().Validate))

	return &AppState{
		Backend:     backend,
		Store:       taskStore,
		TaskService: tasks.NewTaskService(taskStore),
		Health:      healthManager,
		Logger:      logger,
		Config:      config.Get(),
	}, nil
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	logger, err := buildLogger(logConfig.Format, logConfig.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	return logger
}

// buildLogger picks the production encoder for "json" and the development one
// otherwise. Unknown levels fall back to info.
func buildLogger(format, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func setupRouter(as *AppState) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	handlers := api.NewTaskHandlers(as.TaskService, as.Health, as.Logger)

	return api.NewRouter(handlers, as.Logger, api.RouterOptions{
		AllowOrigins:   config.Cors().AllowOrigins,
		MaxAge:         time.Duration(config.Cors().MaxAgeSeconds) * time.Second,
		MaxRequestSize: config.Http().MaxRequestSize,
	})
}

func setupSignalHandler(as *AppState, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if err := as.Backend.Close(ctx); err != nil {
			logger.Error("Error closing storage backend", zap.Error(err))
		}

		done <- struct{}{}
	}()

	return done
}
