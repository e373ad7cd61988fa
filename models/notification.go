package models

import "time"

// NotificationPayload is what the engine hands to the notification dispatcher.
type NotificationPayload struct {
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	Data          map[string]any `json:"data,omitempty"`
	EmailTemplate string         `json:"emailTemplate,omitempty"`
	SmsTemplate   string         `json:"smsTemplate,omitempty"`
	SendAt        *time.Time     `json:"sendAt,omitempty"`

	// Key names a delayed notification so it can be revoked before delivery.
	Key string `json:"key,omitempty"`
	// BookingID and OnlyIfStatus make delivery conditional: the notification
	// is dropped unless the booking is still in one of the listed statuses.
	BookingID    string          `json:"bookingId,omitempty"`
	OnlyIfStatus []BookingStatus `json:"onlyIfStatus,omitempty"`
}

// StillDeliverable reports whether a conditional payload may be sent for a
// booking currently in status.
func (p NotificationPayload) StillDeliverable(status BookingStatus) bool {
	if len(p.OnlyIfStatus) == 0 {
		return true
	}
	for _, s := range p.OnlyIfStatus {
		if s == status {
			return true
		}
	}
	return false
}

// NotificationTask is the queued form of a payload addressed to one user.
type NotificationTask struct {
	UserID  string              `json:"userId"`
	Payload NotificationPayload `json:"payload"`
}
