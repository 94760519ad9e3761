package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gRaffRO/VoyageHub-sub000/internal/budget"
	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/realtime"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
)

// BudgetView - бюджет отпуска с расходами и сводкой.
type BudgetView struct {
	Budget   *models.Budget   `json:"budget"`
	Expenses []models.Expense `json:"expenses"`
	Summary  budget.Summary   `json:"summary"`
}

// ExpenseInput - данные для нового расхода.
type ExpenseInput struct {
	CategoryID  *string         `json:"categoryId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        models.Date     `json:"date"`
}

// BudgetService определяет интерфейс для сервиса бюджета.
type BudgetService interface {
	GetBudget(ctx context.Context, userID, vacationID string) (*BudgetView, error)
	UpdateBudget(ctx context.Context, userID, vacationID string, patch models.BudgetPatch) (*BudgetView, error)
	AddExpense(ctx context.Context, userID, vacationID string, in ExpenseInput) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, patch models.ExpensePatch) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
}

// Убедимся, что budgetService удовлетворяет интерфейсу BudgetService.
var _ BudgetService = (*budgetService)(nil)

type budgetService struct {
	repos  repository.Manager
	events Publisher
}

// NewBudgetService создает новый экземпляр сервиса бюджета. events может быть nil.
func NewBudgetService(repos repository.Manager, events Publisher) BudgetService {
	return &budgetService{repos: repos, events: publisherOrNoop(events)}
}

// GetBudget возвращает бюджет отпуска. При первом обращении создается пустой
// бюджет в валюте из настроек пользователя.
func (s *budgetService) GetBudget(ctx context.Context, userID, vacationID string) (*BudgetView, error) {
	b, err := s.ensureBudget(ctx, userID, vacationID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, b)
}

func (s *budgetService) ensureBudget(ctx context.Context, userID, vacationID string) (*models.Budget, error) {
	if _, err := getOwnedVacation(ctx, s.repos, userID, vacationID); err != nil {
		return nil, err
	}

	b, err := s.repos.Budgets().GetByVacation(ctx, vacationID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, repository.ErrBudgetNotFound) {
		return nil, fmt.Errorf("ошибка получения бюджета: %w", err)
	}

	currency := models.DefaultCurrency
	if user, userErr := s.repos.Users().GetUserByID(ctx, userID); userErr == nil && validCurrency(user.Preferences.Currency) {
		currency = user.Preferences.Currency
	}

	ts := now()
	b = &models.Budget{
		ID:          newID(),
		VacationID:  vacationID,
		TotalBudget: decimal.Zero,
		Currency:    currency,
		Categories:  []models.BudgetCategory{},
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err = s.repos.Budgets().Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrBudgetExists) {
			// параллельный запрос успел создать бюджет
			return s.repos.Budgets().GetByVacation(ctx, vacationID)
		}
		return nil, fmt.Errorf("ошибка создания бюджета: %w", err)
	}
	slog.Info("[BudgetService] Создан пустой бюджет", "vacation_id", vacationID, "currency", currency)
	return b, nil
}

func (s *budgetService) view(ctx context.Context, b *models.Budget) (*BudgetView, error) {
	expenses, err := s.repos.Budgets().ListExpenses(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения расходов: %w", err)
	}
	return &BudgetView{Budget: b, Expenses: expenses, Summary: budget.Summarize(*b, expenses)}, nil
}

// UpdateBudget меняет сумму, валюту и, если передан, весь список категорий.
func (s *budgetService) UpdateBudget(
	ctx context.Context,
	userID, vacationID string,
	patch models.BudgetPatch,
) (*BudgetView, error) {
	b, err := s.ensureBudget(ctx, userID, vacationID)
	if err != nil {
		return nil, err
	}
	before, err := s.view(ctx, b)
	if err != nil {
		return nil, err
	}

	if patch.TotalBudget != nil {
		if patch.TotalBudget.IsNegative() {
			return nil, invalid("totalBudget", "сумма бюджета не может быть отрицательной")
		}
		b.TotalBudget = *patch.TotalBudget
	}
	if patch.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*patch.Currency))
		if !validCurrency(currency) {
			return nil, invalid("currency", "код валюты должен состоять из трех букв")
		}
		b.Currency = currency
	}
	if patch.Categories != nil {
		categories, catErr := normalizeCategories(*patch.Categories)
		if catErr != nil {
			return nil, catErr
		}
		b.Categories = categories
	}
	b.UpdatedAt = now()

	err = s.repos.WithTx(ctx, func(tx repository.Manager) error {
		if err := tx.Budgets().Update(ctx, b); err != nil {
			return err
		}
		if patch.Categories == nil {
			return nil
		}
		if err := tx.Budgets().ReplaceCategories(ctx, b.ID, b.Categories); err != nil {
			return err
		}
		keep := make([]string, 0, len(b.Categories))
		for _, c := range b.Categories {
			keep = append(keep, c.ID)
		}
		detached, err := tx.Budgets().DetachExpenses(ctx, b.ID, keep)
		if err != nil {
			return err
		}
		if detached > 0 {
			slog.Info("[BudgetService] Расходы удаленных категорий стали нераспределенными",
				"budget_id", b.ID, "count", detached)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления бюджета: %w", err)
	}

	v, err := s.view(ctx, b)
	if err != nil {
		return nil, err
	}
	s.alertIfCrossed(ctx, userID, vacationID, before.Summary.Status, v.Summary.Status)
	s.publish(vacationID, "budget", v.Summary)
	return v, nil
}

func normalizeCategories(in []models.BudgetCategory) ([]models.BudgetCategory, error) {
	out := make([]models.BudgetCategory, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, c := range in {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, invalid(fmt.Sprintf("categories[%d].name", i), "название категории не может быть пустым")
		}
		if c.Allocated.IsNegative() {
			return nil, invalid(fmt.Sprintf("categories[%d].allocated", i), "сумма не может быть отрицательной")
		}
		if c.ID == "" {
			c.ID = newID()
		}
		if _, dup := seen[c.ID]; dup {
			return nil, invalid(fmt.Sprintf("categories[%d].id", i), "повторяющийся ID категории")
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// AddExpense добавляет расход в бюджет отпуска.
func (s *budgetService) AddExpense(
	ctx context.Context,
	userID, vacationID string,
	in ExpenseInput,
) (*models.Expense, error) {
	b, err := s.ensureBudget(ctx, userID, vacationID)
	if err != nil {
		return nil, err
	}

	e := &models.Expense{
		ID:          newID(),
		BudgetID:    b.ID,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Date:        in.Date,
		CreatedAt:   now(),
	}
	e.Apply(models.ExpensePatch{CategoryID: in.CategoryID})
	if err = validateExpense(e, b); err != nil {
		return nil, err
	}

	before, err := s.view(ctx, b)
	if err != nil {
		return nil, err
	}
	if err = s.repos.Budgets().CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("ошибка создания расхода: %w", err)
	}

	after := budget.Summarize(*b, append(before.Expenses, *e))
	s.alertIfCrossed(ctx, userID, vacationID, before.Summary.Status, after.Status)
	s.publish(vacationID, "expense-created", after)
	return e, nil
}

// UpdateExpense применяет патч к расходу.
func (s *budgetService) UpdateExpense(
	ctx context.Context,
	userID, expenseID string,
	patch models.ExpensePatch,
) (*models.Expense, error) {
	loc, e, err := s.getOwnedExpense(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	b, err := s.repos.Budgets().GetByVacation(ctx, loc.VacationID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения бюджета: %w", err)
	}

	e.Apply(patch)
	e.Description = strings.TrimSpace(e.Description)
	if err = validateExpense(e, b); err != nil {
		return nil, err
	}

	before, err := s.view(ctx, b)
	if err != nil {
		return nil, err
	}
	if err = s.repos.Budgets().UpdateExpense(ctx, e); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("ошибка обновления расхода: %w", err)
	}

	expenses := make([]models.Expense, 0, len(before.Expenses))
	for _, other := range before.Expenses {
		if other.ID == e.ID {
			other = *e
		}
		expenses = append(expenses, other)
	}
	after := budget.Summarize(*b, expenses)
	s.alertIfCrossed(ctx, userID, loc.VacationID, before.Summary.Status, after.Status)
	s.publish(loc.VacationID, "expense-updated", e)
	return e, nil
}

// DeleteExpense удаляет расход.
func (s *budgetService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	loc, _, err := s.getOwnedExpense(ctx, userID, expenseID)
	if err != nil {
		return err
	}
	if err = s.repos.Budgets().DeleteExpense(ctx, expenseID, loc.BudgetID); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("ошибка удаления расхода: %w", err)
	}
	s.publish(loc.VacationID, "expense-deleted", map[string]string{"id": expenseID})
	return nil
}

func (s *budgetService) getOwnedExpense(
	ctx context.Context,
	userID, expenseID string,
) (repository.ExpenseLocation, *models.Expense, error) {
	loc, err := s.repos.Budgets().LocateExpense(ctx, expenseID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return loc, nil, ErrExpenseNotFound
		}
		return loc, nil, fmt.Errorf("ошибка поиска расхода: %w", err)
	}
	e, err := s.repos.Budgets().GetExpense(ctx, expenseID, loc.BudgetID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return loc, nil, ErrExpenseNotFound
		}
		return loc, nil, fmt.Errorf("ошибка получения расхода: %w", err)
	}
	return loc, e, nil
}

// alertIfCrossed создает уведомление, когда изменение расходов или суммы
// бюджета переводит бюджет в более высокий уровень тревоги.
func (s *budgetService) alertIfCrossed(ctx context.Context, userID, vacationID string, before, after budget.Status) {
	if statusRank(after) <= statusRank(before) {
		return
	}
	user, err := s.repos.Users().GetUserByID(ctx, userID)
	if err != nil || !user.Preferences.Notifications.BudgetAlerts {
		return
	}

	n := &models.Notification{
		ID:        newID(),
		UserID:    userID,
		Type:      models.NotificationWarning,
		Title:     "Бюджет почти исчерпан",
		Message:   "Потрачено не меньше 75% бюджета отпуска.",
		CreatedAt: now(),
	}
	if after == budget.StatusOverBudget {
		n.Type = models.NotificationError
		n.Title = "Бюджет превышен"
		n.Message = "Расходы превысили бюджет отпуска."
	}
	actionURL := "/vacations/" + vacationID + "/budget"
	n.ActionURL = &actionURL

	if err = s.repos.Notifications().Create(ctx, n); err != nil {
		slog.Warn("[BudgetService] Не удалось создать уведомление о бюджете", "user_id", userID, "error", err)
	}
}

// statusRank упорядочивает уровни тревоги: уведомляем только при росте.
func statusRank(st budget.Status) int {
	switch st {
	case budget.StatusWarning:
		return 1
	case budget.StatusOverBudget:
		return 2
	default:
		return 0
	}
}

func (s *budgetService) publish(vacationID, action string, payload any) {
	s.events.Publish(realtime.Event{
		Type:       realtime.EventBudgetUpdated,
		VacationID: vacationID,
		Payload:    map[string]any{"action": action, "data": payload},
	})
}

func validateExpense(e *models.Expense, b *models.Budget) error {
	if !e.Amount.IsPositive() {
		return invalid("amount", "сумма расхода должна быть больше нуля")
	}
	if e.Date.IsZero() {
		return invalid("date", "дата расхода обязательна")
	}
	if e.CategoryID != nil {
		found := false
		for _, c := range b.Categories {
			if c.ID == *e.CategoryID {
				found = true
				break
			}
		}
		if !found {
			return invalid("categoryId", "категория не найдена в бюджете")
		}
	}
	return nil
}
