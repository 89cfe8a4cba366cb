package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-suggester/internal/pkg/common"
)

const defaultDedupWindow = time.Second

// requestCache 最近的 POST 請求指紋，用於去重
type requestCache struct {
	mu       sync.Mutex
	requests map[string]time.Time
	window   time.Duration
	lastGC   time.Time
}

// seen 記錄指紋，window 內重複時回傳 true
func (rc *requestCache) seen(fingerprint string, now time.Time) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if now.Sub(rc.lastGC) > 10*rc.window {
		for k, t := range rc.requests {
			if now.Sub(t) > rc.window {
				delete(rc.requests, k)
			}
		}
		rc.lastGC = now
	}

	if last, ok := rc.requests[fingerprint]; ok && now.Sub(last) <= rc.window {
		return true
	}
	rc.requests[fingerprint] = now
	return false
}

// Deduplication 請求去重中間件，相同來源在 window 內重送相同的 POST 內容會被拒絕
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = defaultDedupWindow
	}
	cache := &requestCache{
		requests: make(map[string]time.Time),
		window:   window,
		lastGC:   time.Now(),
	}

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
					Code:    common.ErrCodeInvalidRequest,
					Message: "Request body could not be read",
				})
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if cache.seen(fingerprint, time.Now()) {
			common.LogWarn("重複請求",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Request too frequent",
			})
			return
		}

		c.Next()
	}
}
