package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/api"
	"github.com/workpulse/surveychat/internal/compat"
	"github.com/workpulse/surveychat/internal/config"
	"github.com/workpulse/surveychat/internal/filter"
	"github.com/workpulse/surveychat/internal/identify"
	"github.com/workpulse/surveychat/internal/intent"
	"github.com/workpulse/surveychat/internal/repository"
	"github.com/workpulse/surveychat/internal/service"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database (sessions, messages, thread cache)
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(db)
	cacheRepo := repository.NewThreadCacheRepository(db, cfg.ThreadTTL(), logger)
	fileRepo := repository.NewFileRepository(cfg.Data.Dir, cfg.FileMaxAge(), cfg.Cache.MaxBatchSize, logger)
	starterRepo := repository.NewStarterRepository(cfg.Data.StartersDir, logger)

	// Canonical topic mapping, shared by the identifier and the assessor
	mappingLoader := compat.NewLoader(cfg.Data.MappingPath, logger)
	if _, err := mappingLoader.Mapping(); err != nil {
		logger.Warn("Topic mapping unavailable at startup, continuing degraded", zap.Error(err))
	}

	// OpenAI client backs both external collaborators
	var openaiClient *openai.Client
	if cfg.OpenAI.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.BaseURL != "" {
			clientCfg.BaseURL = cfg.OpenAI.BaseURL
		}
		openaiClient = openai.NewClientWithConfig(clientCfg)
	} else {
		logger.Warn("No OpenAI API key configured; semantic matching and answer generation disabled")
	}

	var matcher identify.Matcher = identify.NoopMatcher{}
	var generator *service.Generator
	if openaiClient != nil {
		matcher = identify.NewOpenAIMatcher(openaiClient, cfg.OpenAI.MatcherModel, mappingLoader, logger)
		generator = service.NewGenerator(openaiClient, cfg.OpenAI.AnswerModel,
			float32(cfg.OpenAI.Temperature), cfg.OpenAI.MaxTokens, logger)
	}

	identifier := identify.NewIdentifier(mappingLoader, matcher, 0.5, logger)
	assessor := compat.NewAssessor(mappingLoader, logger)
	parser := intent.NewParser(logger)
	filterProc := filter.NewProcessor(logger)

	processor := service.NewQueryProcessor(
		parser,
		identifier,
		cacheRepo,
		fileRepo,
		starterRepo,
		filterProc,
		assessor,
		logger,
	)

	chatService := service.NewChatService(sessionRepo, processor, generator)
	adminService := service.NewAdminService(mappingLoader, identifier, cacheRepo, sessionRepo)

	// Setup router
	router := api.SetupRouter(chatService, processor, adminService, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Periodic purge of expired thread cache entries
	purgeDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed, err := cacheRepo.Purge(); err != nil {
					logger.Warn("Thread cache purge failed", zap.Error(err))
				} else if removed > 0 {
					logger.Info("Purged expired thread cache entries", zap.Int64("removed", removed))
				}
			case <-purgeDone:
				return
			}
		}
	}()

	// Start server in goroutine
	go func() {
		logger.Info("Starting SurveyChat server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", cfg.Server.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	close(purgeDone)

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
