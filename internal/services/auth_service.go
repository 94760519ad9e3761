package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gRaffRO/VoyageHub-sub000/internal/auth"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
	"github.com/gRaffRO/VoyageHub-sub000/models"
)

// Шовные функции для тестов.
var (
	newID = func() string { return uuid.NewString() }
	now   = func() time.Time { return time.Now().UTC() }
)

// TokenIssuer выпускает токен доступа.
type TokenIssuer interface {
	Generate(userID, email string) (string, error)
}

// AuthService определяет интерфейс для сервиса аутентификации и профиля.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.User, error)
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

// Register регистрирует нового пользователя и сразу выдает токен.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err = checkPasswordLength("password", req.Password); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "имя не может быть пустым")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("[AuthService] Ошибка хеширования пароля", "error", err)
		return nil, err
	}

	ts := now()
	user := &models.User{
		ID:           newID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			slog.Info("[AuthService] Попытка регистрации с занятым e-mail", "email", email)
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	slog.Info("[AuthService] Пользователь зарегистрирован", "user_id", user.ID)
	return s.respond(user)
}

// Login проверяет e-mail и пароль и выдает токен.
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			slog.Info("[AuthService] Попытка входа несуществующего пользователя", "email", email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if err = auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		slog.Info("[AuthService] Неверный пароль", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.respond(user)
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токена: %w", err)
	}
	return &models.AuthResponse{User: user, Token: token}, nil
}

// GetProfile возвращает пользователя по ID.
func (s *authService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return user, nil
}

// UpdateProfile меняет имя, настройки и пароль. Смена пароля требует текущий пароль.
func (s *authService) UpdateProfile(
	ctx context.Context,
	userID string,
	req models.ProfileUpdateRequest,
) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "имя не может быть пустым")
		}
		user.Name = name
	}
	if req.Preferences != nil {
		if err = validatePreferences(*req.Preferences); err != nil {
			return nil, err
		}
		user.Preferences = *req.Preferences
	}
	if req.NewPassword != nil {
		if req.CurrentPassword == nil || auth.CheckPassword(user.PasswordHash, *req.CurrentPassword) != nil {
			return nil, invalid("currentPassword", "текущий пароль указан неверно")
		}
		if err = checkPasswordLength("newPassword", *req.NewPassword); err != nil {
			return nil, err
		}
		if user.PasswordHash, err = auth.HashPassword(*req.NewPassword); err != nil {
			return nil, err
		}
	}

	user.UpdatedAt = now()
	if err = s.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка обновления профиля: %w", err)
	}
	return user, nil
}

func validatePreferences(p models.Preferences) error {
	if !validCurrency(p.Currency) {
		return invalid("preferences.currency", "код валюты должен состоять из трех заглавных букв")
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil || p.Timezone == "" {
		return invalid("preferences.timezone", "неизвестный часовой пояс")
	}
	switch p.Theme {
	case "light", "dark", "system":
	default:
		return invalid("preferences.theme", "тема должна быть light, dark или system")
	}
	return nil
}

// normalizeEmail проверяет адрес и приводит его к нижнему регистру.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "некорректный e-mail")
	}
	return email, nil
}

// validCurrency проверяет трехбуквенный код валюты.
func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func checkPasswordLength(field, password string) error {
	switch {
	case len(password) < auth.MinPasswordLength:
		return invalid(field, fmt.Sprintf("пароль должен быть не короче %d символов", auth.MinPasswordLength))
	case len(password) > auth.MaxPasswordLength:
		return invalid(field, fmt.Sprintf("пароль должен быть не длиннее %d байт", auth.MaxPasswordLength))
	}
	return nil
}
