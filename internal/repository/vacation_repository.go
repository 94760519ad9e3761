package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
)

const vacationColumns = `id, user_id, title, description, start_date, end_date, status,
	destinations, collaborators, created_at, updated_at`

// VacationRepository определяет методы для работы с отпусками.
// Все выборки ограничены владельцем: чужой отпуск неотличим от несуществующего.
type VacationRepository interface {
	Create(ctx context.Context, v *models.Vacation) error
	GetByID(ctx context.Context, id, userID string) (*models.Vacation, error)
	ListByUser(ctx context.Context, userID string, status *models.VacationStatus) ([]models.Vacation, error)
	Update(ctx context.Context, v *models.Vacation) error
	Delete(ctx context.Context, id, userID string) error
}

type sqlVacationRepository struct {
	db DBTX
}

// NewVacationRepository создает новый экземпляр репозитория отпусков.
func NewVacationRepository(db DBTX) VacationRepository {
	return &sqlVacationRepository{db: db}
}

// Create сохраняет новый отпуск.
func (r *sqlVacationRepository) Create(ctx context.Context, v *models.Vacation) error {
	query := r.db.Rebind(`INSERT INTO vacations (` + vacationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.UserID, v.Title, v.Description, v.StartDate, v.EndDate, v.Status,
		v.Destinations, v.Collaborators, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на создание отпуска: %w", err)
	}
	return nil
}

// GetByID находит отпуск пользователя по ID.
func (r *sqlVacationRepository) GetByID(ctx context.Context, id, userID string) (*models.Vacation, error) {
	query := r.db.Rebind(`SELECT ` + vacationColumns + ` FROM vacations WHERE id = ? AND user_id = ?`)

	var v models.Vacation
	if err := r.db.QueryRowxContext(ctx, query, id, userID).StructScan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVacationNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение отпуска: %w", err)
	}
	return &v, nil
}

// ListByUser возвращает отпуска пользователя по дате начала.
// Если status не nil, выборка ограничивается этим статусом.
func (r *sqlVacationRepository) ListByUser(
	ctx context.Context,
	userID string,
	status *models.VacationStatus,
) ([]models.Vacation, error) {
	query := `SELECT ` + vacationColumns + ` FROM vacations WHERE user_id = ?`
	args := []any{userID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY start_date, created_at`

	vacations := make([]models.Vacation, 0)
	if err := selectContext(ctx, r.db, &vacations, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка отпусков: %w", err)
	}
	return vacations, nil
}

// Update сохраняет изменяемые поля отпуска.
func (r *sqlVacationRepository) Update(ctx context.Context, v *models.Vacation) error {
	query := r.db.Rebind(`UPDATE vacations
		SET title = ?, description = ?, start_date = ?, end_date = ?, status = ?,
		    destinations = ?, collaborators = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		v.Title, v.Description, v.StartDate, v.EndDate, v.Status,
		v.Destinations, v.Collaborators, v.UpdatedAt, v.ID, v.UserID,
	)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на обновление отпуска: %w", err)
	}
	return expectAffected(res, ErrVacationNotFound)
}

// Delete удаляет строку отпуска. Зависимые строки должны быть удалены заранее.
func (r *sqlVacationRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM vacations WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на удаление отпуска: %w", err)
	}
	return expectAffected(res, ErrVacationNotFound)
}
