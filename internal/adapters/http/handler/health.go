package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pgdb "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/db/postgres"
)

// Health はデータベースへの疎通を確認します。
func (h *Handler) Health(c *gin.Context) {
	if h.db != nil {
		if err := pgdb.Ping(c.Request.Context(), h.db); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
