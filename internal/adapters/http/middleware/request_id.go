// Package middleware は管理 API 共通の gin ミドルウェアを提供します。
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader はリクエスト ID を受け渡すヘッダー名です。
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxRequestIDLen = 128
)

// RequestID はリクエストごとに ID を採番し、レスポンスヘッダーへ設定します。
// クライアントから渡された ID は長さが妥当な場合のみ引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}

		c.Header(RequestIDHeader, requestID)
		c.Set(requestIDKey, requestID)

		c.Next()
	}
}

// GetRequestID はコンテキストに保存されたリクエスト ID を返します。
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
