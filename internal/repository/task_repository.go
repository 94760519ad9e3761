package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
)

const taskColumns = `t.id, t.vacation_id, t.title, t.description, t.status, t.priority,
	t.due_date, t.assigned_to, t.completed_at, t.created_at, t.updated_at`

// TaskRepository определяет методы для работы с задачами.
// Доступ к задаче проверяется через владельца отпуска.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetForUser(ctx context.Context, id, userID string) (*models.Task, error)
	ListByVacation(ctx context.Context, vacationID string) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
	DeleteByVacation(ctx context.Context, vacationID string) (int64, error)
}

type sqlTaskRepository struct {
	db DBTX
}

// NewTaskRepository создает новый экземпляр репозитория задач.
func NewTaskRepository(db DBTX) TaskRepository {
	return &sqlTaskRepository{db: db}
}

// Create сохраняет новую задачу.
func (r *sqlTaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := r.db.Rebind(`INSERT INTO tasks (id, vacation_id, title, description, status, priority,
		due_date, assigned_to, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.VacationID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.AssignedTo, task.CompletedAt, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на создание задачи: %w", err)
	}
	return nil
}

// GetForUser находит задачу, если она принадлежит отпуску пользователя.
func (r *sqlTaskRepository) GetForUser(ctx context.Context, id, userID string) (*models.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + `
		FROM tasks t JOIN vacations v ON v.id = t.vacation_id
		WHERE t.id = ? AND v.user_id = ?`)

	var task models.Task
	if err := r.db.QueryRowxContext(ctx, query, id, userID).StructScan(&task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение задачи: %w", err)
	}
	return &task, nil
}

// ListByVacation возвращает задачи отпуска в порядке создания.
func (r *sqlTaskRepository) ListByVacation(ctx context.Context, vacationID string) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.vacation_id = ? ORDER BY t.created_at, t.id`
	if err := selectContext(ctx, r.db, &tasks, query, vacationID); err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка задач: %w", err)
	}
	return tasks, nil
}

// Update сохраняет изменяемые поля задачи.
func (r *sqlTaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := r.db.Rebind(`UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, due_date = ?,
		    assigned_to = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		task.AssignedTo, task.CompletedAt, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на обновление задачи: %w", err)
	}
	return expectAffected(res, ErrTaskNotFound)
}

// Delete удаляет задачу по ID.
func (r *sqlTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на удаление задачи: %w", err)
	}
	return expectAffected(res, ErrTaskNotFound)
}

// DeleteByVacation удаляет все задачи отпуска и возвращает их число.
func (r *sqlTaskRepository) DeleteByVacation(ctx context.Context, vacationID string) (int64, error) {
	n, err := execCount(ctx, r.db, `DELETE FROM tasks WHERE vacation_id = ?`, vacationID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления задач отпуска: %w", err)
	}
	return n, nil
}
