package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequestObserver 記錄 HTTP 請求
type RequestObserver interface {
	ObserveRequest(method, route string, status int)
}

// Metrics 以路由樣板記錄請求數，避免路徑參數造成高基數
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if observer != nil {
			observer.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
		}
	}
}
