package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gRaffRO/VoyageHub-sub000/internal/middleware"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
)

// maxJSONBody - предельный размер JSON-тела запроса.
const maxJSONBody = 1 << 20

const msgInternal = "Внутренняя ошибка сервера"

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("[Handlers] Ошибка кодирования ответа", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeJSON читает тело запроса. При ошибке ответ 400 уже отправлен.
func decodeJSON(w http.ResponseWriter, r *http.Request, component string, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Info("["+component+"] Ошибка декодирования запроса", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return false
	}
	return true
}

// userID достает ID пользователя, положенный middleware аутентификации.
func userID(w http.ResponseWriter, r *http.Request, component string) (string, bool) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		slog.Error("["+component+"] Не удалось получить userID из контекста", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return "", false
	}
	return id, true
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ.
// Неожиданные ошибки логируются, клиент видит общее сообщение.
func writeServiceError(w http.ResponseWriter, r *http.Request, component string, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Message, Field: vErr.Field})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, services.ErrUnsupportedFileType):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		slog.Error("["+component+"] Внутренняя ошибка",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func isNotFound(err error) bool {
	for _, target := range []error{
		services.ErrUserNotFound,
		services.ErrVacationNotFound,
		services.ErrTaskNotFound,
		services.ErrBudgetNotFound,
		services.ErrExpenseNotFound,
		services.ErrDocumentNotFound,
		services.ErrNotificationNotFound,
		services.ErrFileNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
