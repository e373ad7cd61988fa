package tasks

import (
	"encoding/json"
	"fmt"

	"bookly/models"

	"github.com/hibiken/asynq"
)

const TypeSendNotification = "notification:send"

// NotificationQueue is the asynq queue notification tasks are enqueued on.
const NotificationQueue = "default"

// NewNotificationTask builds the queue task for one notification. Payloads
// with SendAt are held by the queue until then; a Key becomes the task id so
// the task can be found and deleted later.
func NewNotificationTask(n models.NotificationTask, maxRetry int) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendNotification, b)
	opts := []asynq.Option{asynq.MaxRetry(maxRetry), asynq.Queue(NotificationQueue)}
	if n.Payload.Key != "" {
		opts = append(opts, asynq.TaskID(n.Payload.Key))
	}
	if n.Payload.SendAt != nil {
		opts = append(opts, asynq.ProcessAt(*n.Payload.SendAt))
	}
	return task, opts, nil
}

// ParseNotificationTask decodes a task built by NewNotificationTask.
func ParseNotificationTask(t *asynq.Task) (models.NotificationTask, error) {
	var n models.NotificationTask
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return n, fmt.Errorf("invalid %s payload: %w", TypeSendNotification, err)
	}
	return n, nil
}
