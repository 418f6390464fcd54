package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"journal-editorial-api/models"
	"journal-editorial-api/queue"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

var (
	emailClientOnce sync.Once
	emailClient     *asynq.Client
)

// sharedEmailClient lazily builds one enqueue client per process.
func sharedEmailClient() *asynq.Client {
	emailClientOnce.Do(func() {
		emailClient = queue.NewClient()
	})
	return emailClient
}

// NotificationService creates notification rows and hands email delivery to
// the worker queue. Delivery is fire-and-forget: an enqueue failure is
// logged and never fails the workflow transition that caused it.
type NotificationService struct {
	db     *gorm.DB
	client *asynq.Client
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db, client: sharedEmailClient()}
}

// Notify writes one notification row per recipient and enqueues email jobs.
func (s *NotificationService) Notify(userIDs []int, title, message, ntype string, submissionID *int) {
	for _, userID := range userIDs {
		row := models.Notification{
			UserID:              userID,
			Title:               title,
			Message:             message,
			Type:                ntype,
			RelatedSubmissionID: submissionID,
			CreatedAt:           time.Now(),
		}
		if err := s.db.Create(&row).Error; err != nil {
			log.Printf("notification insert failed for user %d: %v", userID, err)
			continue
		}
		if err := queue.EnqueueNotificationEmail(context.Background(), s.client, queue.EmailPayload{
			NotificationID: row.NotificationID,
		}); err != nil {
			log.Printf("notification email enqueue failed for user %d: %v", userID, err)
		}
	}
}

// NotifyEditors fans a notification out to every active editor account.
func (s *NotificationService) NotifyEditors(title, message string, submissionID int) {
	var editors []models.User
	if err := s.db.Where("role = ? AND deleted_at IS NULL", models.RoleEditor).Find(&editors).Error; err != nil {
		log.Printf("load editors for notification: %v", err)
		return
	}
	ids := make([]int, len(editors))
	for i, e := range editors {
		ids[i] = e.UserID
	}
	s.Notify(ids, title, message, "info", &submissionID)
}

// ListForUser returns the actor's notifications, newest first.
func (s *NotificationService) ListForUser(userID int, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var rows []models.Notification
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rows, nil
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(userID, notificationID int) error {
	now := time.Now()
	res := s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"is_read": true, "updated_at": &now})
	if res.Error != nil {
		return fmt.Errorf("mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NewNotFoundError("notification", notificationID)
	}
	return nil
}
