package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/http/middleware"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/rut"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/worker"
)

type workerClientResponse struct {
	ID   string `json:"id"`
	RUT  string `json:"rut"`
	Name string `json:"name"`
}

type workerResponse struct {
	ID            string                `json:"id"`
	ClientID      string                `json:"client_id"`
	RUT           string                `json:"rut"`
	RUTDisplay    string                `json:"rut_display"`
	FirstName     string                `json:"first_name"`
	LastName      string                `json:"last_name"`
	FullName      string                `json:"full_name"`
	Position      *string               `json:"position,omitempty"`
	Status        string                `json:"status"`
	ContractStart *string               `json:"contract_start"`
	ContractEnd   *string               `json:"contract_end"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Client        *workerClientResponse `json:"client,omitempty"`
}

func toWorkerResponse(w *worker.Worker) workerResponse {
	resp := workerResponse{
		ID:            w.ID,
		ClientID:      w.ClientID,
		RUT:           w.RUT,
		RUTDisplay:    rut.Format(w.RUT),
		FirstName:     w.FirstName,
		LastName:      w.LastName,
		FullName:      w.FullName(),
		Position:      w.Position,
		Status:        string(w.Status),
		ContractStart: formatDate(w.ContractStart),
		ContractEnd:   formatDate(w.ContractEnd),
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
	if w.Client != nil {
		resp.Client = &workerClientResponse{ID: w.Client.ID, RUT: w.Client.RUT, Name: w.Client.Name}
	}
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// optionalDate は PATCH で「未指定」「null で消去」「日付」を区別します。
type optionalDate struct {
	Set   bool
	Value *time.Time
}

func (d *optionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if bytes.Equal(b, []byte("null")) {
		d.Value = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

type createWorkerRequest struct {
	RUT           string       `json:"rut" binding:"required"`
	FirstName     string       `json:"first_name" binding:"required"`
	LastName      string       `json:"last_name" binding:"required"`
	Position      *string      `json:"position"`
	Status        *string      `json:"status"`
	ContractStart optionalDate `json:"contract_start"`
	ContractEnd   optionalDate `json:"contract_end"`
}

type updateWorkerRequest struct {
	RUT           *string      `json:"rut"`
	FirstName     *string      `json:"first_name"`
	LastName      *string      `json:"last_name"`
	Position      *string      `json:"position"`
	Status        *string      `json:"status"`
	ContractStart optionalDate `json:"contract_start"`
	ContractEnd   optionalDate `json:"contract_end"`
}

func workerStatus(raw *string) *worker.Status {
	if raw == nil {
		return nil
	}
	status := worker.Status(*raw)
	return &status
}

// CreateWorker は顧客に従業員を登録します。
func (h *Handler) CreateWorker(c *gin.Context) {
	var req createWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "rut, first_name and last_name are required; dates must be YYYY-MM-DD")
		return
	}
	created, err := h.workers.CreateWorker(c.Request.Context(), worker.CreateWorkerInput{
		ClientID:      c.Param("id"),
		RUT:           req.RUT,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Position:      req.Position,
		Status:        workerStatus(req.Status),
		ContractStart: req.ContractStart.Value,
		ContractEnd:   req.ContractEnd.Value,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWorkerResponse(created))
}

// GetWorker は従業員を取得します。
func (h *Handler) GetWorker(c *gin.Context) {
	found, err := h.workers.GetWorker(c.Request.Context(), worker.GetWorkerInput{ID: c.Param("id")})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !middleware.CanAccessClient(c, found.ClientID) {
		forbidden(c)
		return
	}
	c.JSON(http.StatusOK, toWorkerResponse(found))
}

// ListWorkers は顧客の従業員一覧を返します。
func (h *Handler) ListWorkers(c *gin.Context) {
	clientID := c.Param("id")
	if !middleware.CanAccessClient(c, clientID) {
		forbidden(c)
		return
	}
	size, token, err := pageParams(c)
	if err != nil {
		badRequest(c, "page_size must be a number")
		return
	}
	in := worker.ListWorkersInput{ClientID: clientID, PageSize: size, PageToken: token}
	if raw := c.Query("status"); raw != "" {
		in.Status = workerStatus(&raw)
	}

	result, err := h.workers.ListWorkers(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]workerResponse, 0, len(result.Workers))
	for _, w := range result.Workers {
		items = append(items, toWorkerResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"workers": items, "next_page_token": result.NextPageToken})
}

// UpdateWorker は従業員と契約期間を更新します。
func (h *Handler) UpdateWorker(c *gin.Context) {
	var req updateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body; dates must be YYYY-MM-DD")
		return
	}
	updated, err := h.workers.UpdateWorker(c.Request.Context(), worker.UpdateWorkerInput{
		ID:               c.Param("id"),
		RUT:              req.RUT,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Position:         req.Position,
		Status:           workerStatus(req.Status),
		ContractStart:    req.ContractStart.Value,
		ContractStartSet: req.ContractStart.Set,
		ContractEnd:      req.ContractEnd.Value,
		ContractEndSet:   req.ContractEnd.Set,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkerResponse(updated))
}

// DeleteWorker は従業員を削除します。
func (h *Handler) DeleteWorker(c *gin.Context) {
	if err := h.workers.DeleteWorker(c.Request.Context(), worker.DeleteWorkerInput{ID: c.Param("id")}); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
