package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
		now:      time.Now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	// 補充令牌，保留小數部分
	rl.tokens = math.Min(rl.capacity, rl.tokens+elapsed*rl.rate)

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// idle 令牌已補滿，可以回收
func (rl *RateLimiter) idle(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens+now.Sub(rl.lastTime).Seconds()*rl.rate >= rl.capacity
}

// clientLimiters 每個來源 IP 一個令牌桶
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*RateLimiter
	requests int
	window   time.Duration
	lastGC   time.Time
}

func (c *clientLimiters) get(key string) *RateLimiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.lastGC) > 10*c.window {
		for k, l := range c.limiters {
			if l.idle(now) {
				delete(c.limiters, k)
			}
		}
		c.lastGC = now
	}

	l, ok := c.limiters[key]
	if !ok {
		l = NewRateLimiter(c.requests, c.window)
		c.limiters[key] = l
	}
	return l
}

// RateLimit 依來源 IP 限流的中間件
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	clients := &clientLimiters{
		limiters: make(map[string]*RateLimiter),
		requests: cfg.Requests,
		window:   cfg.Window,
		lastGC:   time.Now(),
	}

	return func(c *gin.Context) {
		if !clients.get(c.ClientIP()).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(cfg.Window.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Too many requests",
			})
			return
		}

		c.Next()
	}
}
