package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// User представляет пользователя системы.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
// Тэги `json` используются для (де)сериализации JSON.
type User struct {
	ID           string      `db:"id" json:"id"`
	Email        string      `db:"email" json:"email"`
	Name         string      `db:"name" json:"name"`
	PasswordHash string      `db:"password_hash" json:"-"` // Не отправляем хеш пароля в JSON
	Preferences  Preferences `db:"preferences" json:"preferences"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// NotificationPreferences - какие уведомления пользователь хочет получать.
type NotificationPreferences struct {
	Email         bool `json:"email"`
	Push          bool `json:"push"`
	TaskReminders bool `json:"taskReminders"`
	BudgetAlerts  bool `json:"budgetAlerts"`
}

// Preferences - пользовательские настройки.
// В БД хранятся одной JSON-колонкой.
type Preferences struct {
	Currency      string                  `json:"currency"`
	Timezone      string                  `json:"timezone"`
	Theme         string                  `json:"theme"`
	Notifications NotificationPreferences `json:"notifications"`
}

// DefaultPreferences возвращает настройки нового пользователя.
func DefaultPreferences() Preferences {
	return Preferences{
		Currency: "USD",
		Timezone: "UTC",
		Theme:    "light",
		Notifications: NotificationPreferences{
			Email:         true,
			Push:          true,
			TaskReminders: true,
			BudgetAlerts:  true,
		},
	}
}

// Value реализует driver.Valuer.
func (p Preferences) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации настроек: %w", err)
	}
	return string(b), nil
}

// Scan реализует sql.Scanner. Пустое значение дает настройки по умолчанию.
func (p *Preferences) Scan(src any) error {
	*p = DefaultPreferences()
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("неподдерживаемый тип для Preferences")
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, p)
}
