package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/compliance"
)

type notificationResponse struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Date     string `json:"date"`
	Priority string `json:"priority"`
}

// ListNotifications は当日、または date パラメーターで指定した日の通知を返します。
func (h *Handler) ListNotifications(c *gin.Context) {
	var (
		notifications []compliance.Notification
		err           error
	)
	if raw := c.Query("date"); raw != "" {
		day, parseErr := time.ParseInLocation(dateLayout, raw, h.location)
		if parseErr != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		notifications, err = h.compliance.NotificationsAt(c.Request.Context(), day)
	} else {
		notifications, err = h.compliance.Notifications(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, notificationResponse{
			Kind:     string(n.Kind),
			Category: string(n.Kind.Category()),
			Title:    n.Title,
			Message:  n.Message,
			Date:     n.Date.Format(dateLayout),
			Priority: n.Priority.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}
