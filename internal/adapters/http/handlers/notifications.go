package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// NotificationSource is the read side of the notification area.
type NotificationSource interface {
	Recent(limit int) []ports.Notification
}

// NotificationHandler serves the notification area.
type NotificationHandler struct {
	source NotificationSource
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(source NotificationSource) *NotificationHandler {
	return &NotificationHandler{source: source}
}

// RegisterRoutes mounts the notification route on rg.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.List)
}

// List handles GET /api/v1/notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	var req dto.NotificationsRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	items := h.source.Recent(req.Limit)
	if items == nil {
		items = []ports.Notification{}
	}

	c.JSON(http.StatusOK, dto.NotificationsResponse{Items: items})
}
