package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
	"journal-editorial-api/queue"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

// handleNotificationEmail delivers one notification row by email. Rows
// already marked sent are skipped so retries stay idempotent.
func handleNotificationEmail(ctx context.Context, t *asynq.Task) error {
	var payload queue.EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var notification models.Notification
	if err := config.DB.Where("notification_id = ?", payload.NotificationID).First(&notification).Error; err != nil {
		return fmt.Errorf("load notification %d: %w", payload.NotificationID, err)
	}
	if notification.EmailSent {
		return nil
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND deleted_at IS NULL", notification.UserID).First(&user).Error; err != nil {
		log.Printf("recipient for notification %d is gone, dropping", payload.NotificationID)
		return nil
	}

	body := fmt.Sprintf("<p>%s</p><p>%s</p>", notification.Title, notification.Message)
	if err := config.SendMail([]string{user.Email}, notification.Title, body); err != nil {
		return fmt.Errorf("send notification email %d: %w", payload.NotificationID, err)
	}

	if err := config.DB.Model(&models.Notification{}).
		Where("notification_id = ?", notification.NotificationID).
		Update("email_sent", true).Error; err != nil {
		// The mail went out; a failed flag write only risks one duplicate.
		log.Printf("mark email sent for notification %d: %v", notification.NotificationID, err)
	}
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	config.InitDB()

	srv := asynq.NewServer(queue.RedisOpt(), asynq.Config{
		Concurrency: 10,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.NotificationEmailTask, handleNotificationEmail)

	log.Println("Notification worker starting")
	if err := srv.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
