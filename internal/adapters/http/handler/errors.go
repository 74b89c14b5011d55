package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/errmap"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/http/middleware"
)

var errInvalidQuery = errors.New("invalid query parameter")

// statusFor はエラー分類を HTTP ステータスに変換します。
func statusFor(err error) int {
	switch errmap.Classify(err) {
	case errmap.InvalidArgument:
		return http.StatusBadRequest
	case errmap.NotFound:
		return http.StatusNotFound
	case errmap.Conflict:
		return http.StatusConflict
	case errmap.Unauthenticated:
		return http.StatusUnauthorized
	case errmap.TooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// respondError はエラーを JSON で返します。内部エラーの詳細はログにのみ出力します。
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, gin.H{
			"error":      "internal server error",
			"request_id": middleware.GetRequestID(c),
		})
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access to this client is not allowed"})
}

// pageParams は page_size と page_token を読み取ります。page_size が数値でない場合はエラーです。
func pageParams(c *gin.Context) (int, string, error) {
	size := 0
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, "", errInvalidQuery
		}
		size = n
	}
	return size, c.Query("page_token"), nil
}
