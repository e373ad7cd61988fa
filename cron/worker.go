package cron

import (
	"context"
	"errors"
	"time"

	"bookly/config"
	"bookly/database"
	"bookly/models"
	"bookly/services/notification"
	"bookly/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection for the notification queue.
func QueueRedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// InitNotificationWorker starts the asynq server that delivers queued
// notifications. The returned server should be shut down on exit.
func InitNotificationWorker(ctx context.Context, cfg config.Config, sender notification.Dispatcher, bookings BookingReader, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(cfg),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.NotificationQueue: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendNotification, HandleNotificationTask(sender, bookings, logger))

	go monitorRedisConnection(ctx, cfg, logger)

	go func() {
		logger.Info("starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("notification worker failed to start",
				zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("notification worker gave up")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// BookingReader loads the booking a conditional notification refers to.
type BookingReader interface {
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
}

// HandleNotificationTask delivers one queued notification. Returning the
// delivery error lets asynq retry the task. Conditional notifications whose
// booking has moved on (a reminder for a cancelled booking) are dropped.
func HandleNotificationTask(sender notification.Dispatcher, bookings BookingReader, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseNotificationTask(task)
		if err != nil {
			logger.Error("dropping malformed notification task", zap.Error(err))
			return asynq.SkipRetry
		}

		if n.Payload.BookingID != "" && len(n.Payload.OnlyIfStatus) > 0 && bookings != nil {
			b, err := bookings.GetByID(ctx, n.Payload.BookingID)
			if errors.Is(err, database.ErrNotFound) {
				logger.Info("dropping notification for unknown booking", zap.String("bookingId", n.Payload.BookingID))
				return nil
			}
			if err != nil {
				return err
			}
			if !n.Payload.StillDeliverable(b.Status) {
				logger.Info("dropping stale notification",
					zap.String("bookingId", b.ID),
					zap.String("status", string(b.Status)),
					zap.String("type", n.Payload.Type))
				return nil
			}
		}

		if err := sender.Send(ctx, n.UserID, n.Payload); err != nil {
			logger.Warn("notification delivery failed",
				zap.String("userId", n.UserID),
				zap.String("type", n.Payload.Type),
				zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue's Redis periodically to surface outages.
func monitorRedisConnection(ctx context.Context, cfg config.Config, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("queue redis connection lost", zap.Error(err))
			}
		}
	}
}
