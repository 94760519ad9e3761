package models

import "time"

// NotificationType - вид уведомления.
type NotificationType string

const (
	NotificationInfo     NotificationType = "info"
	NotificationSuccess  NotificationType = "success"
	NotificationWarning  NotificationType = "warning"
	NotificationError    NotificationType = "error"
	NotificationReminder NotificationType = "reminder"
)

// Valid сообщает, что тип известен.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError, NotificationReminder:
		return true
	}
	return false
}

// Notification - уведомление пользователя.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Read      bool             `db:"is_read" json:"read"`
	ActionURL *string          `db:"action_url" json:"actionUrl"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}
