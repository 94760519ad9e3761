package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gRaffRO/VoyageHub-sub000/internal/handlers"
	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
)

func setupNotificationRouter(h *handlers.NotificationHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/notifications", h.List)
	r.Post("/notifications", h.Create)
	r.Patch("/notifications/read-all", h.MarkAllRead)
	r.Patch("/notifications/{id}/read", h.MarkRead)
	r.Delete("/notifications/{id}", h.Delete)
	return r
}

func TestNotificationHandler(t *testing.T) {
	mockService := new(MockNotificationService)
	r := setupNotificationRouter(handlers.NewNotificationHandler(mockService))

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		setup          func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "Только непрочитанные",
			method: http.MethodGet, target: "/notifications?unread=true",
			setup: func() {
				mockService.On("ListNotifications", mock.Anything, testUserID, true).
					Return([]models.Notification{{ID: "n1", Title: "Виза"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Виза"`,
		},
		{
			name:   "Все уведомления",
			method: http.MethodGet, target: "/notifications",
			setup: func() {
				mockService.On("ListNotifications", mock.Anything, testUserID, false).
					Return([]models.Notification{}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:   "Создание",
			method: http.MethodPost, target: "/notifications", body: `{"type":"reminder","title":"Чемодан"}`,
			setup: func() {
				mockService.On("CreateNotification", mock.Anything, testUserID,
					services.NotificationInput{Type: models.NotificationReminder, Title: "Чемодан"}).
					Return(&models.Notification{ID: "n2", Title: "Чемодан"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":"n2"`,
		},
		{
			name:   "Прочитать все",
			method: http.MethodPatch, target: "/notifications/read-all",
			setup: func() {
				mockService.On("MarkAllRead", mock.Anything, testUserID).Return(int64(4), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"updated":4`,
		},
		{
			name:   "Прочитать чужое",
			method: http.MethodPatch, target: "/notifications/n9/read",
			setup: func() {
				mockService.On("MarkRead", mock.Anything, testUserID, "n9").Return(services.ErrNotificationNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   services.ErrNotificationNotFound.Error(),
		},
		{
			name:   "Удаление",
			method: http.MethodDelete, target: "/notifications/n1",
			setup: func() {
				mockService.On("DeleteNotification", mock.Anything, testUserID, "n1").Return(nil).Once()
			},
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, withUser(httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
	mockService.AssertExpectations(t)
}
