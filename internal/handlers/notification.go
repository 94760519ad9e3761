package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
)

// NotificationService определяет интерфейс для сервиса уведомлений.
type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	CreateNotification(ctx context.Context, userID string, in services.NotificationInput) (*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, userID, notificationID string) error
}

// NotificationHandler обрабатывает HTTP-запросы к уведомлениям.
type NotificationHandler struct {
	service NotificationService
}

// NewNotificationHandler создает новый экземпляр NotificationHandler.
func NewNotificationHandler(s NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// MarkAllReadResponse - ответ на отметку всех уведомлений.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// List возвращает уведомления, ?unread=true оставляет только непрочитанные.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "NotificationHandler:List")
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	list, err := h.service.ListNotifications(r.Context(), uid, unreadOnly)
	if err != nil {
		writeServiceError(w, r, "NotificationHandler:List", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create создает уведомление для текущего пользователя.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "NotificationHandler:Create")
	if !ok {
		return
	}
	var in services.NotificationInput
	if !decodeJSON(w, r, "NotificationHandler:Create", &in) {
		return
	}
	n, err := h.service.CreateNotification(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, r, "NotificationHandler:Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// MarkRead отмечает уведомление прочитанным.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "NotificationHandler:MarkRead")
	if !ok {
		return
	}
	if err := h.service.MarkRead(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "NotificationHandler:MarkRead", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead отмечает все уведомления прочитанными.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "NotificationHandler:MarkAllRead")
	if !ok {
		return
	}
	n, err := h.service.MarkAllRead(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, "NotificationHandler:MarkAllRead", err)
		return
	}
	writeJSON(w, http.StatusOK, MarkAllReadResponse{Updated: n})
}

// Delete удаляет уведомление.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "NotificationHandler:Delete")
	if !ok {
		return
	}
	if err := h.service.DeleteNotification(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "NotificationHandler:Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
