package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
)

// NotificationInput - данные нового уведомления.
type NotificationInput struct {
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	ActionURL *string                 `json:"actionUrl"`
}

// NotificationService определяет интерфейс для сервиса уведомлений.
type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	CreateNotification(ctx context.Context, userID string, in NotificationInput) (*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, userID, notificationID string) error
}

// Убедимся, что notificationService удовлетворяет интерфейсу NotificationService.
var _ NotificationService = (*notificationService)(nil)

type notificationService struct {
	repos repository.Manager
}

// NewNotificationService создает новый экземпляр сервиса уведомлений.
func NewNotificationService(repos repository.Manager) NotificationService {
	return &notificationService{repos: repos}
}

func (s *notificationService) ListNotifications(
	ctx context.Context,
	userID string,
	unreadOnly bool,
) ([]models.Notification, error) {
	list, err := s.repos.Notifications().ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения уведомлений: %w", err)
	}
	return list, nil
}

func (s *notificationService) CreateNotification(
	ctx context.Context,
	userID string,
	in NotificationInput,
) (*models.Notification, error) {
	n := &models.Notification{
		ID:        newID(),
		UserID:    userID,
		Type:      in.Type,
		Title:     strings.TrimSpace(in.Title),
		Message:   in.Message,
		ActionURL: in.ActionURL,
		CreatedAt: now(),
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	if !n.Type.Valid() {
		return nil, invalid("type", "неизвестный тип уведомления")
	}
	if n.Title == "" {
		return nil, invalid("title", "заголовок не может быть пустым")
	}

	if err := s.repos.Notifications().Create(ctx, n); err != nil {
		return nil, fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return mapNotificationErr(s.repos.Notifications().MarkRead(ctx, notificationID, userID), "ошибка отметки уведомления")
}

// MarkAllRead отмечает все уведомления пользователя прочитанными и возвращает их число.
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repos.Notifications().MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("ошибка отметки уведомлений: %w", err)
	}
	return n, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return mapNotificationErr(s.repos.Notifications().Delete(ctx, notificationID, userID), "ошибка удаления уведомления")
}

func mapNotificationErr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotificationNotFound):
		return ErrNotificationNotFound
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
