package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
	"github.com/gRaffRO/VoyageHub-sub000/internal/storage"
)

// VacationInput - данные для создания отпуска.
type VacationInput struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	StartDate     models.Date           `json:"startDate"`
	EndDate       models.Date           `json:"endDate"`
	Status        models.VacationStatus `json:"status"`
	Destinations  models.Destinations   `json:"destinations"`
	Collaborators models.StringList     `json:"collaborators"`
}

// VacationService определяет интерфейс для сервиса отпусков.
type VacationService interface {
	ListVacations(ctx context.Context, userID string, status *models.VacationStatus) ([]models.Vacation, error)
	GetVacation(ctx context.Context, userID, vacationID string) (*models.Vacation, error)
	CreateVacation(ctx context.Context, userID string, in VacationInput) (*models.Vacation, error)
	UpdateVacation(ctx context.Context, userID, vacationID string, patch models.VacationPatch) (*models.Vacation, error)
	DeleteVacation(ctx context.Context, userID, vacationID string) (*models.CascadeResult, error)
}

// Убедимся, что vacationService удовлетворяет интерфейсу VacationService.
var _ VacationService = (*vacationService)(nil)

type vacationService struct {
	repos repository.Manager
	files storage.FileStorage
}

// NewVacationService создает новый экземпляр сервиса отпусков.
func NewVacationService(repos repository.Manager, files storage.FileStorage) VacationService {
	return &vacationService{repos: repos, files: files}
}

// ListVacations возвращает отпуска пользователя, при необходимости с фильтром по статусу.
func (s *vacationService) ListVacations(
	ctx context.Context,
	userID string,
	status *models.VacationStatus,
) ([]models.Vacation, error) {
	if status != nil && !status.Valid() {
		return nil, invalid("status", "неизвестный статус отпуска")
	}
	list, err := s.repos.Vacations().ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка отпусков: %w", err)
	}
	return list, nil
}

// GetVacation возвращает отпуск, если он принадлежит пользователю.
func (s *vacationService) GetVacation(ctx context.Context, userID, vacationID string) (*models.Vacation, error) {
	return getOwnedVacation(ctx, s.repos, userID, vacationID)
}

// getOwnedVacation загружает отпуск владельца. Чужой отпуск неотличим от несуществующего.
func getOwnedVacation(ctx context.Context, repos repository.Manager, userID, vacationID string) (*models.Vacation, error) {
	v, err := repos.Vacations().GetByID(ctx, vacationID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrVacationNotFound) {
			return nil, ErrVacationNotFound
		}
		return nil, fmt.Errorf("ошибка получения отпуска: %w", err)
	}
	return v, nil
}

// CreateVacation создает отпуск пользователя.
func (s *vacationService) CreateVacation(
	ctx context.Context,
	userID string,
	in VacationInput,
) (*models.Vacation, error) {
	ts := now()
	v := &models.Vacation{
		ID:            newID(),
		UserID:        userID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        in.Status,
		Destinations:  in.Destinations,
		Collaborators: in.Collaborators,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if v.Status == "" {
		v.Status = models.VacationPlanning
	}
	if err := validateVacation(v); err != nil {
		return nil, err
	}

	if err := s.repos.Vacations().Create(ctx, v); err != nil {
		return nil, fmt.Errorf("ошибка создания отпуска: %w", err)
	}
	slog.Info("[VacationService] Отпуск создан", "vacation_id", v.ID, "user_id", userID)
	return v, nil
}

// UpdateVacation применяет патч к отпуску.
func (s *vacationService) UpdateVacation(
	ctx context.Context,
	userID, vacationID string,
	patch models.VacationPatch,
) (*models.Vacation, error) {
	v, err := getOwnedVacation(ctx, s.repos, userID, vacationID)
	if err != nil {
		return nil, err
	}
	v.Apply(patch)
	v.Title = strings.TrimSpace(v.Title)
	if err = validateVacation(v); err != nil {
		return nil, err
	}
	v.UpdatedAt = now()

	if err = s.repos.Vacations().Update(ctx, v); err != nil {
		if errors.Is(err, repository.ErrVacationNotFound) {
			return nil, ErrVacationNotFound
		}
		return nil, fmt.Errorf("ошибка обновления отпуска: %w", err)
	}
	return v, nil
}

// DeleteVacation удаляет отпуск вместе с задачами, документами и бюджетом.
// Строки удаляются в одной транзакции: при любой ошибке не удаляется ничего.
// Файлы документов удаляются из хранилища после фиксации; ошибки только логируются.
func (s *vacationService) DeleteVacation(
	ctx context.Context,
	userID, vacationID string,
) (*models.CascadeResult, error) {
	if _, err := getOwnedVacation(ctx, s.repos, userID, vacationID); err != nil {
		return nil, err
	}

	var (
		result   models.CascadeResult
		fileKeys []string
	)
	err := s.repos.WithTx(ctx, func(tx repository.Manager) error {
		var err error
		result = models.CascadeResult{}

		if fileKeys, err = tx.Documents().ListFileKeysByVacation(ctx, vacationID); err != nil {
			return err
		}
		if result.Tasks, err = tx.Tasks().DeleteByVacation(ctx, vacationID); err != nil {
			return err
		}
		if result.Documents, err = tx.Documents().DeleteByVacation(ctx, vacationID); err != nil {
			return err
		}

		b, err := tx.Budgets().GetByVacation(ctx, vacationID)
		switch {
		case errors.Is(err, repository.ErrBudgetNotFound):
		case err != nil:
			return err
		default:
			if result.Expenses, err = tx.Budgets().DeleteExpensesByBudget(ctx, b.ID); err != nil {
				return err
			}
			if result.Categories, err = tx.Budgets().DeleteCategories(ctx, b.ID); err != nil {
				return err
			}
			if err = tx.Budgets().Delete(ctx, b.ID); err != nil {
				return err
			}
			result.Budget = true
		}

		return tx.Vacations().Delete(ctx, vacationID, userID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrVacationNotFound) {
			return nil, ErrVacationNotFound
		}
		slog.Error("[VacationService] Каскадное удаление отменено", "vacation_id", vacationID, "error", err)
		return nil, fmt.Errorf("ошибка удаления отпуска: %w", err)
	}

	s.removeFiles(ctx, fileKeys)

	slog.Info("[VacationService] Отпуск удален",
		"vacation_id", vacationID,
		"tasks", result.Tasks,
		"documents", result.Documents,
		"expenses", result.Expenses,
		"categories", result.Categories,
		"budget", result.Budget,
	)
	return &result, nil
}

func (s *vacationService) removeFiles(ctx context.Context, keys []string) {
	if s.files == nil {
		return
	}
	for _, key := range keys {
		if err := s.files.DeleteFile(ctx, key); err != nil {
			slog.Warn("[VacationService] Не удалось удалить файл документа", "key", key, "error", err)
		}
	}
}

func validateVacation(v *models.Vacation) error {
	if v.Title == "" {
		return invalid("title", "название не может быть пустым")
	}
	if v.StartDate.IsZero() {
		return invalid("startDate", "дата начала обязательна")
	}
	if v.EndDate.IsZero() {
		return invalid("endDate", "дата окончания обязательна")
	}
	if !v.StartDate.Before(v.EndDate) {
		return invalid("endDate", "дата окончания должна быть позже даты начала")
	}
	if !v.Status.Valid() {
		return invalid("status", "неизвестный статус отпуска")
	}
	for i, d := range v.Destinations {
		if strings.TrimSpace(d.Name) == "" {
			return invalid(fmt.Sprintf("destinations[%d].name", i), "название места не может быть пустым")
		}
	}
	for i, email := range v.Collaborators {
		if _, err := normalizeEmail(email); err != nil {
			return invalid(fmt.Sprintf("collaborators[%d]", i), "некорректный e-mail")
		}
	}
	return nil
}
