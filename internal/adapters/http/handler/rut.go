package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/rut"
)

type rutResponse struct {
	Value     string `json:"value"`
	Valid     bool   `json:"valid"`
	Formatted string `json:"formatted"`
}

// ValidateRUT は value パラメーターの RUT を検証し、表示形式を返します。
func (h *Handler) ValidateRUT(c *gin.Context) {
	value, ok := c.GetQuery("value")
	if !ok {
		badRequest(c, "value is required")
		return
	}
	c.JSON(http.StatusOK, rutResponse{
		Value:     value,
		Valid:     rut.IsValid(value),
		Formatted: rut.Format(value),
	})
}
