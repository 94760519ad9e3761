package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gRaffRO/VoyageHub-sub000/internal/auth"
)

// Тип для ключа контекста.
type contextKey string

// UserIDKey - ключ для хранения ID пользователя в контексте.
const UserIDKey contextKey = "userID"

// TokenValidator проверяет токен и возвращает его claims.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticator проверяет JWT из заголовка Authorization ("Bearer <token>").
// Для websocket-рукопожатия допускается параметр запроса token.
func Authenticator(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractToken(r)
			if !ok {
				slog.Debug("[AuthMiddleware] Неверный формат заголовка Authorization", "path", r.URL.Path)
				writeUnauthorized(w, "Неверный формат токена")
				return
			}
			if tokenString == "" {
				slog.Debug("[AuthMiddleware] Токен отсутствует", "path", r.URL.Path)
				writeUnauthorized(w, "Требуется аутентификация")
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				slog.Info("[AuthMiddleware] Ошибка валидации токена", "error", err)
				writeUnauthorized(w, "Невалидный токен")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken возвращает токен запроса. false означает испорченный заголовок.
func extractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return r.URL.Query().Get("token"), true
	}
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// GetUserIDFromContext извлекает UserID из контекста запроса.
// Возвращает ID пользователя и true, если ID найден, иначе "" и false.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID кладет ID пользователя в контекст. Используется в тестах обработчиков.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
