package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gRaffRO/VoyageHub-sub000/models"
)

const userColumns = `id, email, name, password_hash, preferences, created_at, updated_at`

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// sqlUserRepository реализует UserRepository поверх sqlx.
type sqlUserRepository struct {
	db DBTX
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &sqlUserRepository{db: db}
}

// CreateUser создает нового пользователя в базе данных.
func (r *sqlUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Preferences, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			slog.Info("[UserRepo] e-mail уже занят", "email", user.Email)
			return ErrEmailTaken
		}
		slog.Error("[UserRepo] Ошибка при создании пользователя", "email", user.Email, "error", err)
		return fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	slog.Debug("[UserRepo] Пользователь создан", "user_id", user.ID)
	return nil
}

// GetUserByEmail находит пользователя по e-mail.
func (r *sqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetUserByID находит пользователя по ID.
func (r *sqlUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *sqlUserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), arg).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}
	return &user, nil
}

// UpdateUser сохраняет имя, настройки и хеш пароля пользователя.
func (r *sqlUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`UPDATE users SET name = ?, password_hash = ?, preferences = ?, updated_at = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, user.Name, user.PasswordHash, user.Preferences, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на обновление пользователя: %w", err)
	}
	return expectAffected(res, ErrUserNotFound)
}

// expectAffected возвращает notFound, если запрос не затронул ни одной строки.
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа измененных строк: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
