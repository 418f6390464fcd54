package controllers

import (
	"net/http"
	"strconv"

	"journal-editorial-api/config"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the actor's notifications, newest first.
// ?unread=true narrows to unread rows.
func GetNotifications(c *gin.Context) {
	actor := currentActor(c)
	unreadOnly := c.Query("unread") == "true"

	svc := services.NewNotificationService(config.DB)
	rows, err := svc.ListForUser(actor.ID, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": rows, "total": len(rows)})
}

// MarkNotificationRead flags one of the actor's notifications as read.
func MarkNotificationRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	svc := services.NewNotificationService(config.DB)
	if err := svc.MarkRead(currentActor(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
}
