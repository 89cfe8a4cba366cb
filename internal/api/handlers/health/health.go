package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-suggester/internal/core/ai/queue"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the router.
const (
	ConfigKey = "config"
	QueueKey  = "queue"
	ProbesKey = "probes"
)

// QueueReporter 回報生成請求隊列狀態
type QueueReporter interface {
	GetQueueStatus() *queue.Status
}

// Probe 就緒檢查項目，回傳 nil 代表正常
type Probe func() error

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	AIEnabled bool                   `json:"ai_enabled"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	value, exists := c.Get(ConfigKey)
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Configuration not found",
		})
		return
	}
	cfg, ok := value.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid configuration type",
		})
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		AIEnabled: cfg.AI.Configured(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if v, exists := c.Get(QueueKey); exists {
		if reporter, ok := v.(QueueReporter); ok && reporter != nil {
			response.Queue = reporter.GetQueueStatus()
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，任一檢查失敗回傳 503
func ReadinessCheck(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if v, exists := c.Get(ProbesKey); exists {
		if probes, ok := v.(map[string]Probe); ok {
			for name, probe := range probes {
				if err := probe(); err != nil {
					ready = false
					checks[name] = err.Error()
					continue
				}
				checks[name] = "ok"
			}
		}
	}

	if !ready {
		common.LogWarn("Readiness check failed", zap.Any("checks", checks))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
