package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/http/middleware"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/client"
)

type clientResponse struct {
	ID         string    `json:"id"`
	RUT        string    `json:"rut"`
	RUTDisplay string    `json:"rut_display"`
	Name       string    `json:"name"`
	Email      *string   `json:"email,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toClientResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:         c.ID,
		RUT:        c.RUT,
		RUTDisplay: c.DisplayRUT(),
		Name:       c.Name,
		Email:      c.Email,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type createClientRequest struct {
	RUT   string  `json:"rut" binding:"required"`
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
}

type updateClientRequest struct {
	RUT    *string `json:"rut"`
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Status *string `json:"status"`
}

// CreateClient は顧客を登録します。
func (h *Handler) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "rut and name are required")
		return
	}
	created, err := h.clients.CreateClient(c.Request.Context(), client.CreateClientInput{
		RUT:   req.RUT,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toClientResponse(created))
}

// GetClient は顧客を取得します。client ロールは自身の顧客のみ参照できます。
func (h *Handler) GetClient(c *gin.Context) {
	id := c.Param("id")
	if !middleware.CanAccessClient(c, id) {
		forbidden(c)
		return
	}
	found, err := h.clients.GetClient(c.Request.Context(), client.GetClientInput{ID: id})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(found))
}

// ListClients は顧客を名前順に返します。
func (h *Handler) ListClients(c *gin.Context) {
	size, token, err := pageParams(c)
	if err != nil {
		badRequest(c, "page_size must be a number")
		return
	}
	in := client.ListClientsInput{PageSize: size, PageToken: token}
	if raw := c.Query("status"); raw != "" {
		status := client.Status(raw)
		in.Status = &status
	}

	result, err := h.clients.ListClients(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]clientResponse, 0, len(result.Clients))
	for _, cl := range result.Clients {
		items = append(items, toClientResponse(cl))
	}
	c.JSON(http.StatusOK, gin.H{"clients": items, "next_page_token": result.NextPageToken})
}

// UpdateClient は指定された項目のみ更新します。
func (h *Handler) UpdateClient(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	in := client.UpdateClientInput{
		ID:    c.Param("id"),
		RUT:   req.RUT,
		Name:  req.Name,
		Email: req.Email,
	}
	if req.Status != nil {
		status := client.Status(*req.Status)
		in.Status = &status
	}

	updated, err := h.clients.UpdateClient(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(updated))
}

// DeleteClient は顧客を削除します。従業員や書類が残っている場合は 409 です。
func (h *Handler) DeleteClient(c *gin.Context) {
	if err := h.clients.DeleteClient(c.Request.Context(), client.DeleteClientInput{ID: c.Param("id")}); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
