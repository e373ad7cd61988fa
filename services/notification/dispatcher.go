package notification

import (
	"context"
	"errors"
	"fmt"

	"bookly/models"
	"bookly/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Dispatcher accepts notifications for delivery to a user and withdraws
// delayed ones that have not gone out yet.
type Dispatcher interface {
	Send(ctx context.Context, userID string, payload models.NotificationPayload) error
	Revoke(ctx context.Context, key string) error
}

// taskDeleter is the part of *asynq.Inspector used to revoke tasks.
type taskDeleter interface {
	DeleteTask(queue, id string) error
}

// QueueDispatcher hands notifications to the asynq queue; the worker in
// cron delivers them, retrying failed attempts.
type QueueDispatcher struct {
	Client    *asynq.Client
	Inspector taskDeleter
	MaxRetry  int
	Logger    *zap.Logger
}

func NewQueueDispatcher(client *asynq.Client, inspector *asynq.Inspector, logger *zap.Logger) *QueueDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &QueueDispatcher{Client: client, MaxRetry: 5, Logger: logger}
	if inspector != nil {
		d.Inspector = inspector
	}
	return d
}

func (d *QueueDispatcher) Send(ctx context.Context, userID string, payload models.NotificationPayload) error {
	task, opts, err := tasks.NewNotificationTask(models.NotificationTask{UserID: userID, Payload: payload}, d.MaxRetry)
	if err != nil {
		return fmt.Errorf("build notification task: %w", err)
	}
	info, err := d.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		d.Logger.Debug("notification already queued", zap.String("key", payload.Key))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	d.Logger.Debug("notification queued",
		zap.String("taskId", info.ID),
		zap.String("userId", userID),
		zap.String("type", payload.Type))
	return nil
}

// Revoke deletes a keyed task that is still waiting in the queue.
func (d *QueueDispatcher) Revoke(_ context.Context, key string) error {
	if d.Inspector == nil {
		return nil
	}
	err := d.Inspector.DeleteTask(tasks.NotificationQueue, key)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("revoke notification %s: %w", key, err)
	}
	d.Logger.Debug("notification revoked", zap.String("key", key))
	return nil
}

// LogDispatcher only logs, for running without a queue.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d LogDispatcher) Send(_ context.Context, userID string, payload models.NotificationPayload) error {
	fields := []zap.Field{
		zap.String("userId", userID),
		zap.String("type", payload.Type),
		zap.String("title", payload.Title),
		zap.String("message", payload.Message),
	}
	if payload.SendAt != nil {
		fields = append(fields, zap.Time("sendAt", *payload.SendAt))
	}
	d.Logger.Info("notification", fields...)
	return nil
}

func (d LogDispatcher) Revoke(_ context.Context, key string) error {
	d.Logger.Info("notification revoked", zap.String("key", key))
	return nil
}
