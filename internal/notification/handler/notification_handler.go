package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
	"github.com/ticketrush/ticketrush/internal/notification/dto"
	"github.com/ticketrush/ticketrush/internal/notification/hub"
	"github.com/ticketrush/ticketrush/internal/notification/service"
	"github.com/ticketrush/ticketrush/pkg/middleware"
	"github.com/ticketrush/ticketrush/pkg/response"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService service.NotificationService
	hub                 *hub.Hub
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService service.NotificationService, h *hub.Hub) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hub:                 h,
	}
}

// Stream handles GET /notifications/stream - a server-sent events stream of
// the user's notifications plus broadcasts
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	conn := h.hub.Register(userID)
	if conn == nil {
		response.Error(c, 503, "STREAM_UNAVAILABLE", "Notification stream is shutting down", "")
		return
	}
	defer h.hub.Unregister(conn)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case notification, open := <-conn.Receive():
			if !open {
				return false
			}
			c.SSEvent("notification", dto.FromNotification(notification))
			return true
		case <-clientGone:
			return false
		}
	})
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, err := h.notificationService.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromNotifications(notifications))
}

// UnreadCount handles GET /notifications/unread
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.UnreadCountResponse{Unread: count})
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{"read": true})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{"updated": updated})
}

// Delete handles DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func (h *NotificationHandler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
