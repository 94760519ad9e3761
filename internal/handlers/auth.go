package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gRaffRO/VoyageHub-sub000/models"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.User, error)
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией и профилем.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, "AuthHandler", &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "AuthHandler", err)
		return
	}
	slog.Info("[AuthHandler] Пользователь зарегистрирован", "user_id", resp.User.ID)
	writeJSON(w, http.StatusCreated, resp)
}

// Login обрабатывает запрос на вход пользователя.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, "AuthHandler", &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "AuthHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Profile возвращает профиль текущего пользователя.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "AuthHandler")
	if !ok {
		return
	}
	user, err := h.service.GetProfile(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, "AuthHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile меняет имя, настройки или пароль текущего пользователя.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "AuthHandler")
	if !ok {
		return
	}
	var req models.ProfileUpdateRequest
	if !decodeJSON(w, r, "AuthHandler", &req) {
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), uid, req)
	if err != nil {
		writeServiceError(w, r, "AuthHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
