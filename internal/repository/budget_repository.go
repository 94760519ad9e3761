package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
)

const (
	budgetColumns   = `id, vacation_id, total_budget, currency, created_at, updated_at`
	categoryColumns = `id, budget_id, name, allocated, color, position`
	expenseColumns  = `id, budget_id, category_id, description, amount, spent_on, created_at`
)

// BudgetRepository определяет методы для работы с бюджетами, их категориями и расходами.
type BudgetRepository interface {
	Create(ctx context.Context, b *models.Budget) error
	GetByVacation(ctx context.Context, vacationID string) (*models.Budget, error)
	Update(ctx context.Context, b *models.Budget) error
	ReplaceCategories(ctx context.Context, budgetID string, categories []models.BudgetCategory) error
	DeleteCategories(ctx context.Context, budgetID string) (int64, error)
	DetachExpenses(ctx context.Context, budgetID string, keep []string) (int64, error)
	Delete(ctx context.Context, id string) error

	CreateExpense(ctx context.Context, e *models.Expense) error
	GetExpense(ctx context.Context, id, budgetID string) (*models.Expense, error)
	LocateExpense(ctx context.Context, id, userID string) (ExpenseLocation, error)
	ListExpenses(ctx context.Context, budgetID string) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, e *models.Expense) error
	DeleteExpense(ctx context.Context, id, budgetID string) error
	DeleteExpensesByBudget(ctx context.Context, budgetID string) (int64, error)
}

// ExpenseLocation - бюджет и отпуск, к которым относится расход.
type ExpenseLocation struct {
	BudgetID   string `db:"budget_id"`
	VacationID string `db:"vacation_id"`
}

type sqlBudgetRepository struct {
	db DBTX
}

// NewBudgetRepository создает новый экземпляр репозитория бюджетов.
func NewBudgetRepository(db DBTX) BudgetRepository {
	return &sqlBudgetRepository{db: db}
}

// Create сохраняет бюджет вместе с категориями.
// Второй бюджет для того же отпуска дает ErrBudgetExists.
func (r *sqlBudgetRepository) Create(ctx context.Context, b *models.Budget) error {
	query := r.db.Rebind(`INSERT INTO budgets (` + budgetColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, b.ID, b.VacationID, b.TotalBudget, b.Currency, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrBudgetExists
		}
		return fmt.Errorf("ошибка выполнения запроса на создание бюджета: %w", err)
	}

	if err := r.insertCategories(ctx, b.ID, b.Categories); err != nil {
		return err
	}

	slog.Debug("[BudgetRepo] Бюджет создан", "budget_id", b.ID, "vacation_id", b.VacationID)
	return nil
}

// GetByVacation возвращает бюджет отпуска с категориями в сохраненном порядке.
func (r *sqlBudgetRepository) GetByVacation(ctx context.Context, vacationID string) (*models.Budget, error) {
	query := r.db.Rebind(`SELECT ` + budgetColumns + ` FROM budgets WHERE vacation_id = ?`)

	var b models.Budget
	if err := r.db.QueryRowxContext(ctx, query, vacationID).StructScan(&b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение бюджета: %w", err)
	}

	b.Categories = make([]models.BudgetCategory, 0)
	catQuery := `SELECT ` + categoryColumns + ` FROM budget_categories WHERE budget_id = ? ORDER BY position`
	if err := selectContext(ctx, r.db, &b.Categories, catQuery, b.ID); err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на получение категорий бюджета: %w", err)
	}
	return &b, nil
}

// Update сохраняет сумму и валюту бюджета. Категории не затрагиваются.
func (r *sqlBudgetRepository) Update(ctx context.Context, b *models.Budget) error {
	query := r.db.Rebind(`UPDATE budgets SET total_budget = ?, currency = ?, updated_at = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, b.TotalBudget, b.Currency, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на обновление бюджета: %w", err)
	}
	return expectAffected(res, ErrBudgetNotFound)
}

// ReplaceCategories заменяет список категорий бюджета целиком.
// Вызывать внутри транзакции, иначе замена не атомарна.
func (r *sqlBudgetRepository) ReplaceCategories(
	ctx context.Context,
	budgetID string,
	categories []models.BudgetCategory,
) error {
	if _, err := r.DeleteCategories(ctx, budgetID); err != nil {
		return err
	}
	return r.insertCategories(ctx, budgetID, categories)
}

func (r *sqlBudgetRepository) insertCategories(
	ctx context.Context,
	budgetID string,
	categories []models.BudgetCategory,
) error {
	query := r.db.Rebind(`INSERT INTO budget_categories (` + categoryColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	for i := range categories {
		c := &categories[i]
		c.BudgetID = budgetID
		c.Position = i
		if _, err := r.db.ExecContext(ctx, query, c.ID, budgetID, c.Name, c.Allocated, c.Color, c.Position); err != nil {
			return fmt.Errorf("ошибка сохранения категории %q: %w", c.Name, err)
		}
	}
	return nil
}

// DeleteCategories удаляет все категории бюджета и возвращает их число.
func (r *sqlBudgetRepository) DeleteCategories(ctx context.Context, budgetID string) (int64, error) {
	n, err := execCount(ctx, r.db, `DELETE FROM budget_categories WHERE budget_id = ?`, budgetID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления категорий бюджета: %w", err)
	}
	return n, nil
}

// DetachExpenses сбрасывает категорию у расходов бюджета, чья категория
// не входит в keep. Такие расходы считаются нераспределенными.
func (r *sqlBudgetRepository) DetachExpenses(ctx context.Context, budgetID string, keep []string) (int64, error) {
	query := `UPDATE expenses SET category_id = NULL WHERE budget_id = ? AND category_id IS NOT NULL`
	args := []any{budgetID}
	if len(keep) > 0 {
		var err error
		query, args, err = sqlx.In(query+` AND category_id NOT IN (?)`, budgetID, keep)
		if err != nil {
			return 0, fmt.Errorf("ошибка построения запроса: %w", err)
		}
	}
	n, err := execCount(ctx, r.db, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ошибка сброса категорий расходов: %w", err)
	}
	return n, nil
}

// Delete удаляет строку бюджета. Категории и расходы должны быть удалены заранее.
func (r *sqlBudgetRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM budgets WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на удаление бюджета: %w", err)
	}
	return expectAffected(res, ErrBudgetNotFound)
}

// CreateExpense сохраняет новый расход.
func (r *sqlBudgetRepository) CreateExpense(ctx context.Context, e *models.Expense) error {
	query := r.db.Rebind(`INSERT INTO expenses (` + expenseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, e.ID, e.BudgetID, e.CategoryID, e.Description, e.Amount, e.Date, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на создание расхода: %w", err)
	}
	return nil
}

// GetExpense находит расход в пределах бюджета.
func (r *sqlBudgetRepository) GetExpense(ctx context.Context, id, budgetID string) (*models.Expense, error) {
	query := r.db.Rebind(`SELECT ` + expenseColumns + ` FROM expenses WHERE id = ? AND budget_id = ?`)

	var e models.Expense
	if err := r.db.QueryRowxContext(ctx, query, id, budgetID).StructScan(&e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение расхода: %w", err)
	}
	return &e, nil
}

// LocateExpense находит бюджет и отпуск расхода, если отпуск принадлежит пользователю.
func (r *sqlBudgetRepository) LocateExpense(ctx context.Context, id, userID string) (ExpenseLocation, error) {
	query := r.db.Rebind(`SELECT e.budget_id, b.vacation_id
		FROM expenses e
		JOIN budgets b ON b.id = e.budget_id
		JOIN vacations v ON v.id = b.vacation_id
		WHERE e.id = ? AND v.user_id = ?`)

	var loc ExpenseLocation
	if err := r.db.QueryRowxContext(ctx, query, id, userID).StructScan(&loc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExpenseLocation{}, ErrExpenseNotFound
		}
		return ExpenseLocation{}, fmt.Errorf("ошибка выполнения запроса на поиск расхода: %w", err)
	}
	return loc, nil
}

// ListExpenses возвращает расходы бюджета по дате.
func (r *sqlBudgetRepository) ListExpenses(ctx context.Context, budgetID string) ([]models.Expense, error) {
	expenses := make([]models.Expense, 0)
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE budget_id = ? ORDER BY spent_on, created_at`
	if err := selectContext(ctx, r.db, &expenses, query, budgetID); err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка расходов: %w", err)
	}
	return expenses, nil
}

// UpdateExpense сохраняет изменяемые поля расхода.
func (r *sqlBudgetRepository) UpdateExpense(ctx context.Context, e *models.Expense) error {
	query := r.db.Rebind(`UPDATE expenses SET category_id = ?, description = ?, amount = ?, spent_on = ?
		WHERE id = ? AND budget_id = ?`)

	res, err := r.db.ExecContext(ctx, query, e.CategoryID, e.Description, e.Amount, e.Date, e.ID, e.BudgetID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на обновление расхода: %w", err)
	}
	return expectAffected(res, ErrExpenseNotFound)
}

// DeleteExpense удаляет расход.
func (r *sqlBudgetRepository) DeleteExpense(ctx context.Context, id, budgetID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM expenses WHERE id = ? AND budget_id = ?`), id, budgetID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на удаление расхода: %w", err)
	}
	return expectAffected(res, ErrExpenseNotFound)
}

// DeleteExpensesByBudget удаляет все расходы бюджета и возвращает их число.
func (r *sqlBudgetRepository) DeleteExpensesByBudget(ctx context.Context, budgetID string) (int64, error) {
	n, err := execCount(ctx, r.db, `DELETE FROM expenses WHERE budget_id = ?`, budgetID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления расходов бюджета: %w", err)
	}
	return n, nil
}
