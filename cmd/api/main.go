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

	"recipe-suggester/internal/api"
	"recipe-suggester/internal/api/handlers/health"
	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/chat"
	"recipe-suggester/internal/core/ai/queue"
	"recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/core/corpus"
	"recipe-suggester/internal/core/dataset"
	"recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/infrastructure/metrics"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("credential", config.MaskAPIKey(cfg.AI.APIKey)),
		zap.Bool("ai_configured", cfg.AI.Configured()),
		zap.String("model", cfg.AI.Model),
		zap.String("corpus", cfg.Corpus.DocumentPath),
		zap.String("dataset", cfg.Dataset.Path),
	)
	if !cfg.AI.Configured() {
		common.LogWarn("未設定 AI API key，生成式推薦將回報 CONFIGURATION_ERROR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化快取
	store, err := cache.NewStore(ctx, cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	// 生成層：chat client → 隊列 → 服務
	queueManager := queue.NewManager(cfg.Queue, chat.NewClient(cfg.AI))
	queueManager.Start()
	defer queueManager.Close()
	aiService := service.NewService(cfg.AI, queueManager, store)

	// 參考文件層
	doc := corpus.New(cfg.Corpus.DocumentPath, corpus.NewExtractor(cfg.Corpus))
	go func() {
		if err := doc.Warm(ctx); err != nil {
			common.LogWarn("參考文件預熱失敗", zap.Error(err))
		}
	}()

	// 資料集層，載入失敗時只停用該層
	var datasetSource recipe.Source
	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		common.LogWarn("菜色資料集載入失敗，停用資料集層", zap.Error(err))
	} else {
		datasetSource = recipe.NewDatasetSource(ds)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	suggestionService := recipe.NewSuggestionService(
		recipe.NewGenerativeSource(aiService),
		recipe.NewDocumentSource(doc),
		datasetSource,
		m,
	)

	router, err := api.SetupRouter(cfg, api.Dependencies{
		Suggester: suggestionService,
		Queue:     queueManager,
		Metrics:   m,
		Probes: map[string]health.Probe{
			"corpus": func() error {
				_, err := os.Stat(doc.Path())
				return err
			},
			"dataset": func() error {
				if ds == nil {
					return errors.New("dataset not loaded")
				}
				return nil
			},
		},
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	<-ctx.Done()
	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
