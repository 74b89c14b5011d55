package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/http/middleware"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/document"
)

type documentResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Category    string    `json:"category"`
	Period      *string   `json:"period,omitempty"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDocumentResponse(d *document.Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		ClientID:    d.ClientID,
		Category:    string(d.Category),
		Period:      d.Period,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		CreatedAt:   d.CreatedAt,
	}
}

// UploadDocument は multipart の file フィールドを書類として保存します。
// category は必須、period ("YYYY-MM") は任意です。
func (h *Handler) UploadDocument(c *gin.Context) {
	clientID := c.Param("id")
	if !middleware.CanAccessClient(c, clientID) {
		forbidden(c)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, document.ErrFileTooLarge)
			return
		}
		badRequest(c, "file is required")
		return
	}
	defer file.Close()

	in := document.UploadInput{
		ClientID:    clientID,
		Category:    document.Category(c.Request.FormValue("category")),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	if period := c.Request.FormValue("period"); period != "" {
		in.Period = &period
	}

	created, err := h.documents.Upload(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDocumentResponse(created))
}

// ListDocuments は顧客の書類を新しい順に返します。
func (h *Handler) ListDocuments(c *gin.Context) {
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
	in := document.ListDocumentsInput{ClientID: clientID, PageSize: size, PageToken: token}
	if raw := c.Query("category"); raw != "" {
		category := document.Category(raw)
		in.Category = &category
	}

	result, err := h.documents.ListDocuments(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]documentResponse, 0, len(result.Documents))
	for _, d := range result.Documents {
		items = append(items, toDocumentResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"documents": items, "next_page_token": result.NextPageToken})
}

// DocumentURL は書類をダウンロードする署名付き URL を返します。
func (h *Handler) DocumentURL(c *gin.Context) {
	in := document.GetDocumentInput{ID: c.Param("id")}
	doc, err := h.documents.GetDocument(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !middleware.CanAccessClient(c, doc.ClientID) {
		forbidden(c)
		return
	}
	url, err := h.documents.DownloadURL(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// DeleteDocument は書類のメタデータと本体を削除します。
func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.documents.DeleteDocument(c.Request.Context(), document.GetDocumentInput{ID: c.Param("id")}); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
