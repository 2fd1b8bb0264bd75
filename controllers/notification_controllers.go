package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetMyNotifications lists the caller's notifications, newest first.
// unread=true hides those already read.
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	query := nc.DB.Where("customer_id = ?", middlewares.UserID(c))
	if c.Query("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}

	var notifs []models.Notification
	if err := query.Order("created_at DESC, id DESC").Find(&notifs).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of notifications", notifs)
}

func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var notif models.Notification
	if err := nc.DB.Where("id = ? AND customer_id = ?", id, middlewares.UserID(c)).First(&notif).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if notif.ReadAt == nil {
		now := time.Now()
		if err := nc.DB.Model(&notif).Update("read_at", now).Error; err != nil {
			respondServiceError(c, err)
			return
		}
		notif.ReadAt = &now
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notif)
}
