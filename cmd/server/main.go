// cmd/server/main.go
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

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hashurl/internal/cache"
	"hashurl/internal/config"
	"hashurl/internal/handler"
	"hashurl/internal/repository"
	"hashurl/internal/repository/memory"
	postgresRepo "hashurl/internal/repository/postgres"
	"hashurl/internal/service"
	"hashurl/pkg/logger"
)

const dbConnectAttempts = 5

// gormWriter routes gorm's logger through ours
type gormWriter struct {
	logger *logger.Logger
}

// Printf implements the gorm logger.Writer interface
func (w *gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}

func main() {
	// Docker health check against the running server
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(healthcheck())
	}

	// .env is a development convenience only
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	defer appLogger.Sync()
	appLogger.Info("Starting hashurl", "environment", cfg.Environment, "store", cfg.StoreDriver)

	urlRepo, closeStore, err := initRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize store", "error", err)
	}
	defer closeStore()

	// The service takes a nil cache.Cache to mean "no cache", so the
	// interface must stay nil rather than hold a nil pointer.
	var urlCache cache.Cache
	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("Failed to initialize Redis cache, continuing without cache", "error", err)
		} else {
			urlCache = redisCache
			defer func() {
				if err := redisCache.Close(); err != nil {
					appLogger.Error("Error closing Redis connection", "error", err)
				}
			}()
		}
	}

	urlService := service.NewURLService(urlRepo, urlCache, cfg, appLogger)
	urlHandler := handler.NewURLHandler(urlService, cfg.BaseURL, appLogger)
	router := handler.NewRouter(urlHandler, cfg, appLogger)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		appLogger.Info("Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited successfully")
}

func healthcheck() int {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8081"
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/health", port))
	if err != nil {
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

// initRepository picks the store named by STORE_DRIVER. The returned
// func releases whatever the store holds open.
func initRepository(cfg *config.Config, log *logger.Logger) (repository.URLRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn("Using in-memory store; data is lost on restart")
		return memory.NewURLRepository(), func() {}, nil

	case config.StoreDriverPostgres:
		db, err := initDatabase(cfg, log)
		if err != nil {
			return nil, nil, err
		}

		if err := postgresRepo.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
		}

		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Error closing database connection", "error", err)
				}
			}
		}
		return postgresRepo.NewURLRepository(db), closeDB, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// initDatabase opens the PostgreSQL connection with retry and pooling
func initDatabase(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	gormLog := gormlogger.New(
		&gormWriter{logger: log},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var db *gorm.DB
	var err error

	for i := 0; i < dbConnectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:                 gormLog,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
			TranslateError:         true,
		})
		if err == nil {
			break
		}

		log.Warn("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		time.Sleep(5 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbConnectAttempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully")
	return db, nil
}
