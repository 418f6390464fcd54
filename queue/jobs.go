package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
)

const (
	// NotificationEmailTask is scheduled each time a workflow event creates
	// a notification row that should also go out by email.
	NotificationEmailTask = "notification:email"
)

// EmailPayload tells the worker which notification row to deliver. The row
// id keys idempotency: the worker skips rows already marked sent.
type EmailPayload struct {
	NotificationID int `json:"notification_id"`
}

// RedisOpt builds the asynq redis options from the environment.
func RedisOpt() asynq.RedisClientOpt {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}

// NewClient returns an enqueue-only asynq client.
func NewClient() *asynq.Client {
	return asynq.NewClient(RedisOpt())
}

// EnqueueNotificationEmail enqueues one email delivery job.
func EnqueueNotificationEmail(ctx context.Context, client *asynq.Client, payload EmailPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(NotificationEmailTask, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue notification email: %w", err)
	}
	return nil
}
