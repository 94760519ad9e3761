package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/realtime"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
)

// TaskInput - данные для создания задачи.
type TaskInput struct {
	VacationID  string              `json:"vacationId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *models.Date        `json:"dueDate"`
	AssignedTo  *string             `json:"assignedTo"`
}

// TaskService определяет интерфейс для сервиса задач.
type TaskService interface {
	ListTasks(ctx context.Context, userID, vacationID string) ([]models.Task, error)
	CreateTask(ctx context.Context, userID string, in TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// Убедимся, что taskService удовлетворяет интерфейсу TaskService.
var _ TaskService = (*taskService)(nil)

type taskService struct {
	repos  repository.Manager
	events Publisher
}

// NewTaskService создает новый экземпляр сервиса задач. events может быть nil.
func NewTaskService(repos repository.Manager, events Publisher) TaskService {
	return &taskService{repos: repos, events: publisherOrNoop(events)}
}

// ListTasks возвращает задачи отпуска пользователя.
func (s *taskService) ListTasks(ctx context.Context, userID, vacationID string) ([]models.Task, error) {
	if vacationID == "" {
		return nil, invalid("vacationId", "не указан отпуск")
	}
	if _, err := getOwnedVacation(ctx, s.repos, userID, vacationID); err != nil {
		return nil, err
	}
	tasks, err := s.repos.Tasks().ListByVacation(ctx, vacationID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка задач: %w", err)
	}
	return tasks, nil
}

// CreateTask создает задачу в отпуске пользователя.
func (s *taskService) CreateTask(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	if in.VacationID == "" {
		return nil, invalid("vacationId", "не указан отпуск")
	}
	if _, err := getOwnedVacation(ctx, s.repos, userID, in.VacationID); err != nil {
		return nil, err
	}

	ts := now()
	task := &models.Task{
		ID:          newID(),
		VacationID:  in.VacationID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      models.TaskPending,
		Priority:    in.Priority,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if in.Status != "" {
		task.SetStatus(in.Status, ts)
	}
	task.Apply(models.TaskPatch{DueDate: in.DueDate, AssignedTo: in.AssignedTo}, ts)
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.repos.Tasks().Create(ctx, task); err != nil {
		return nil, fmt.Errorf("ошибка создания задачи: %w", err)
	}
	s.publish(task.VacationID, "created", task)
	return task, nil
}

// UpdateTask применяет патч. Переход в completed и выход из него меняют completedAt.
func (s *taskService) UpdateTask(
	ctx context.Context,
	userID, taskID string,
	patch models.TaskPatch,
) (*models.Task, error) {
	task, err := s.getOwnedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	ts := now()
	task.Apply(patch, ts)
	task.Title = strings.TrimSpace(task.Title)
	if err = validateTask(task); err != nil {
		return nil, err
	}
	task.UpdatedAt = ts

	if err = s.repos.Tasks().Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("ошибка обновления задачи: %w", err)
	}
	s.publish(task.VacationID, "updated", task)
	return task, nil
}

// DeleteTask удаляет задачу.
func (s *taskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := s.getOwnedTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err = s.repos.Tasks().Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("ошибка удаления задачи: %w", err)
	}
	s.publish(task.VacationID, "deleted", map[string]string{"id": taskID})
	return nil
}

func (s *taskService) getOwnedTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.repos.Tasks().GetForUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("ошибка получения задачи: %w", err)
	}
	return task, nil
}

func (s *taskService) publish(vacationID, action string, payload any) {
	s.events.Publish(realtime.Event{
		Type:       realtime.EventTaskUpdated,
		VacationID: vacationID,
		Payload:    map[string]any{"action": action, "task": payload},
	})
}

func validateTask(t *models.Task) error {
	if t.Title == "" {
		return invalid("title", "название не может быть пустым")
	}
	if !t.Status.Valid() {
		return invalid("status", "неизвестный статус задачи")
	}
	if !t.Priority.Valid() {
		return invalid("priority", "неизвестный приоритет задачи")
	}
	return nil
}
