package api

import (
	"errors"
	"time"

	"recipe-suggester/internal/api/handlers/health"
	recipeHandler "recipe-suggester/internal/api/handlers/recipe"
	"recipe-suggester/internal/api/middleware"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/infrastructure/metrics"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Suggester recipeHandler.Suggester
	Queue     health.QueueReporter
	Metrics   *metrics.Metrics
	Probes    map[string]health.Probe
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Suggester == nil {
		return nil, errors.New("suggestion service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 注入設定與狀態來源
	router.Use(func(c *gin.Context) {
		c.Set(health.ConfigKey, cfg)
		if deps.Queue != nil {
			c.Set(health.QueueKey, deps.Queue)
		}
		if deps.Probes != nil {
			c.Set(health.ProbesKey, deps.Probes)
		}
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit))
	{
		handler := recipeHandler.NewHandler(deps.Suggester)

		recipeGroup := api.Group("/recipe")
		{
			// 依食材推薦食譜
			recipeGroup.POST("/suggest", middleware.Deduplication(cfg.DedupWindow), handler.HandleSuggest)
		}

		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.GET("/suggest", recipeHandler.HandleIngredientSuggest)
			ingredientGroup.GET("/synonyms", recipeHandler.HandleIngredientSynonyms)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
