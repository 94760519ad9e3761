package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
)

const notificationColumns = `id, user_id, type, title, message, is_read, action_url, created_at`

// NotificationRepository определяет методы для работы с уведомлениями.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id, userID string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

type sqlNotificationRepository struct {
	db DBTX
}

// NewNotificationRepository создает новый экземпляр репозитория уведомлений.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &sqlNotificationRepository{db: db}
}

// Create сохраняет уведомление.
func (r *sqlNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := r.db.Rebind(`INSERT INTO notifications (` + notificationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Message, n.Read, n.ActionURL, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на создание уведомления: %w", err)
	}
	return nil
}

// GetByID находит уведомление пользователя.
func (r *sqlNotificationRepository) GetByID(ctx context.Context, id, userID string) (*models.Notification, error) {
	query := r.db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications WHERE id = ? AND user_id = ?`)

	var n models.Notification
	if err := r.db.QueryRowxContext(ctx, query, id, userID).StructScan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение уведомления: %w", err)
	}
	return &n, nil
}

// ListByUser возвращает уведомления пользователя, новые первыми.
func (r *sqlNotificationRepository) ListByUser(
	ctx context.Context,
	userID string,
	unreadOnly bool,
) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if unreadOnly {
		query += ` AND is_read = ?`
		args = append(args, false)
	}
	query += ` ORDER BY created_at DESC, id`

	list := make([]models.Notification, 0)
	if err := selectContext(ctx, r.db, &list, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на получение уведомлений: %w", err)
	}
	return list, nil
}

// MarkRead отмечает уведомление прочитанным. Повторная отметка не ошибка.
func (r *sqlNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query, true, id, userID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на отметку уведомления: %w", err)
	}
	return expectAffected(res, ErrNotificationNotFound)
}

// MarkAllRead отмечает все непрочитанные уведомления пользователя и возвращает их число.
func (r *sqlNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := execCount(ctx, r.db, `UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`,
		true, userID, false)
	if err != nil {
		return 0, fmt.Errorf("ошибка отметки уведомлений: %w", err)
	}
	return n, nil
}

// Delete удаляет уведомление пользователя.
func (r *sqlNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM notifications WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на удаление уведомления: %w", err)
	}
	return expectAffected(res, ErrNotificationNotFound)
}
