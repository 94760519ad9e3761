package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gRaffRO/VoyageHub-sub000/internal/auth"
	"github.com/gRaffRO/VoyageHub-sub000/internal/middleware"
)

const testSecret = "test-secret"

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		expectedID string
		expectedOK bool
	}{
		{
			name:       "Контекст с UserID",
			ctx:        middleware.WithUserID(context.Background(), "u-123"),
			expectedID: "u-123",
			expectedOK: true,
		},
		{
			name:       "Пустой контекст",
			ctx:        context.Background(),
			expectedOK: false,
		},
		{
			name:       "Контекст с UserID неверного типа",
			ctx:        context.WithValue(context.Background(), middleware.UserIDKey, 42),
			expectedOK: false,
		},
		{
			name:       "Пустая строка",
			ctx:        middleware.WithUserID(context.Background(), ""),
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, ok := middleware.GetUserIDFromContext(tt.ctx)
			assert.Equal(t, tt.expectedID, userID)
			assert.Equal(t, tt.expectedOK, ok)
		})
	}
}

func TestAuthenticator(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	validToken, err := tokens.Generate("u-1", "a@example.com")
	require.NoError(t, err)
	foreignToken, err := auth.NewTokenManager("другой", time.Hour).Generate("u-1", "a@example.com")
	require.NoError(t, err)

	// Обработчик, который проверяет наличие UserID в контексте
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "UserID not found in context", http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, userID)
	})
	handler := middleware.Authenticator(tokens)(nextHandler)

	tests := []struct {
		name           string
		target         string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Валидный токен",
			target:         "/",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedBody:   "u-1",
		},
		{
			name:           "Схема в нижнем регистре",
			target:         "/",
			authHeader:     "bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedBody:   "u-1",
		},
		{
			name:           "Токен в параметре запроса",
			target:         "/ws?token=" + validToken,
			expectedStatus: http.StatusOK,
			expectedBody:   "u-1",
		},
		{
			name:           "Нет заголовка",
			target:         "/",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Требуется аутентификация",
		},
		{
			name:           "Неверная схема",
			target:         "/",
			authHeader:     "Basic " + validToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Неверный формат токена",
		},
		{
			name:           "Без токена после схемы",
			target:         "/",
			authHeader:     "Bearer",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Неверный формат токена",
		},
		{
			name:           "Чужая подпись",
			target:         "/",
			authHeader:     "Bearer " + foreignToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			}
		})
	}
}
