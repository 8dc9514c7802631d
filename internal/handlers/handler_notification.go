package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/SscSPs/finance_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type notificationHandler struct {
	notificationService portssvc.NotificationSvcFacade
}

// RegisterNotificationRoutes registers the notification inbox routes.
func RegisterNotificationRoutes(rg *gin.RouterGroup, notificationService portssvc.NotificationSvcFacade) {
	h := &notificationHandler{notificationService: notificationService}

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.list)
		notifications.POST("/read-all", h.markAllRead)
		notifications.POST("/:id/read", h.markRead)
	}
}

// list godoc
// @Summary List the user's notifications
// @Tags notifications
// @Produce  json
// @Param   unreadOnly query bool false "Only unread notifications"
// @Param   limit query int false "Maximum number of notifications" default(50)
// @Success 200 {object} dto.ListNotificationsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list notifications"
// @Security BearerAuth
// @Router /notifications [get]
func (h *notificationHandler) list(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var params dto.ListNotificationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListNotifications", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), userID, params.UnreadOnly, params.Limit)
	if err != nil {
		respondWithError(c, logger, err, "list notifications")
		return
	}
	unread, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "list notifications")
		return
	}

	resp := dto.ListNotificationsResponse{
		Notifications: make([]dto.NotificationResponse, len(notifications)),
		UnreadCount:   unread,
	}
	for i := range notifications {
		resp.Notifications[i] = dto.ToNotificationResponse(&notifications[i])
	}
	c.JSON(http.StatusOK, resp)
}

// markRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Param   id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Notification not found"
// @Failure 500 {object} map[string]string "Failed to mark notification read"
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *notificationHandler) markRead(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	notificationID := c.Param("id")
	if err := h.notificationService.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		respondWithError(c, logger.With(slog.String("notification_id", notificationID)), err, "mark notification read")
		return
	}
	c.Status(http.StatusNoContent)
}

// markAllRead godoc
// @Summary Mark every notification as read
// @Tags notifications
// @Produce  json
// @Success 200 {object} map[string]int "updated"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to mark notifications read"
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *notificationHandler) markAllRead(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "mark notifications read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
