package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sahoo-ansu/I-MED/internal/api"
	"github.com/sahoo-ansu/I-MED/internal/catalog"
	"github.com/sahoo-ansu/I-MED/internal/classifier"
	"github.com/sahoo-ansu/I-MED/internal/completion"
	"github.com/sahoo-ansu/I-MED/internal/history"
	"github.com/sahoo-ansu/I-MED/internal/notify"
	"github.com/sahoo-ansu/I-MED/internal/recommend"
	"github.com/sahoo-ansu/I-MED/internal/storage"
	"github.com/sahoo-ansu/I-MED/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// Initialize logger
	logger := newLogger(cfg.Server.Mode)
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewSeededMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Database.Host))
		pg, err := storage.NewPostgresStorage(ctx, storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
		if cfg.Database.Seed {
			if err := pg.SeedCatalog(ctx, catalog.Entries()); err != nil {
				logger.Fatal("Failed to seed catalog", zap.Error(err))
			}
		}
		store = pg
	}
	defer store.Close()

	var notifier recommend.EmergencyNotifier
	if cfg.Notify.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.ChatID, logger)
		if err != nil {
			// Alerts are best effort; the service still answers without them.
			logger.Error("Emergency alerts disabled", zap.Error(err))
		} else {
			notifier = tg
			defer tg.Wait()
		}
	}

	recorder := history.NewRecorder(store, cfg.History.WriteTimeout, logger)

	engine := classifier.NewDefaultEngine()
	completer := completion.NewClient(completion.Config{
		BaseURL:    cfg.Completion.BaseURL,
		Referer:    cfg.Completion.Referer,
		Title:      cfg.Completion.Title,
		HTTPClient: &http.Client{Timeout: cfg.Completion.Timeout},
	}, logger)

	static := recommend.NewStaticService(
		engine,
		store,
		recommend.KnowledgeSource(cfg.Recommend.KnowledgeSource),
		recorder,
		notifier,
		logger,
	)
	generative := recommend.NewGenerativeService(
		completer,
		engine,
		completion.Settings{
			APIKey:      cfg.Completion.APIKey,
			Model:       cfg.Completion.Model,
			Temperature: cfg.Completion.Temperature,
			TopP:        cfg.Completion.TopP,
			MaxTokens:   cfg.Completion.MaxTokens,
		},
		cfg.Completion.PromptTemplate,
		recorder,
		notifier,
		logger,
	)

	strategy, ok := recommend.ParseStrategy(cfg.Recommend.Strategy)
	if !ok {
		logger.Fatal("Unknown recommend strategy", zap.String("strategy", cfg.Recommend.Strategy))
	}
	srv := api.NewServer(static, generative, store, api.Options{
		Strategy:       strategy,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)

	// A completion call without its own timeout may run long, so the write
	// deadline only applies when one is configured.
	var writeTimeout time.Duration
	if cfg.Completion.Timeout > 0 {
		writeTimeout = cfg.Completion.Timeout + 15*time.Second
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	logger.Info("Server listening",
		zap.String("port", cfg.Server.Port),
		zap.String("strategy", string(strategy)),
		zap.String("knowledge_source", cfg.Recommend.KnowledgeSource))

	waitForShutdown(server, recorder, logger)
}

func newLogger(mode string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if mode == gin.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func waitForShutdown(server *http.Server, recorder *history.Recorder, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	if err := recorder.Close(ctx); err != nil {
		logger.Error("History writes not drained", zap.Error(err))
	}
}
