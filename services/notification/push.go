package notification

import (
	"context"
	"fmt"
	"time"

	"bookly/database/repository"
	"bookly/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// messenger is the part of *messaging.Client used here.
type messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSender delivers notifications as FCM pushes. Email and SMS templates
// are left to the external delivery system and only logged.
type PushSender struct {
	FCM    messenger
	Users  repository.UserRepository
	Logger *zap.Logger
}

func NewPushSender(fcm *messaging.Client, users repository.UserRepository, logger *zap.Logger) *PushSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PushSender{Users: users, Logger: logger}
	if fcm != nil {
		p.FCM = fcm
	}
	return p
}

// Send pushes the payload to the user's registered device. PushSender has
// no scheduler of its own, so notifications due in the future are dropped;
// the queue worker calls Send only once they are due.
func (p *PushSender) Send(ctx context.Context, userID string, payload models.NotificationPayload) error {
	if payload.SendAt != nil && payload.SendAt.After(time.Now()) {
		p.Logger.Debug("no scheduler, dropping delayed notification",
			zap.String("userId", userID), zap.String("type", payload.Type))
		return nil
	}
	if payload.EmailTemplate != "" || payload.SmsTemplate != "" {
		p.Logger.Info("templated delivery requested",
			zap.String("userId", userID),
			zap.String("emailTemplate", payload.EmailTemplate),
			zap.String("smsTemplate", payload.SmsTemplate))
	}
	if p.FCM == nil {
		p.Logger.Debug("push disabled, dropping notification", zap.String("userId", userID))
		return nil
	}

	u, err := p.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		p.Logger.Debug("user has no FCM token", zap.String("userId", userID))
		return nil
	}

	data := make(map[string]string, len(payload.Data)+1)
	for k, v := range payload.Data {
		data[k] = fmt.Sprint(v)
	}
	data["type"] = payload.Type

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	id, err := p.FCM.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("fcm send to user %s: %w", userID, err)
	}
	p.Logger.Debug("push sent", zap.String("userId", userID), zap.String("messageId", id))
	return nil
}

// Revoke is a no-op: pushes are sent immediately or not at all.
func (p *PushSender) Revoke(context.Context, string) error { return nil }
