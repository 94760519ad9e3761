package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
)

// TaskService определяет интерфейс для сервиса задач.
type TaskService interface {
	ListTasks(ctx context.Context, userID, vacationID string) ([]models.Task, error)
	CreateTask(ctx context.Context, userID string, in services.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// TaskHandler обрабатывает HTTP-запросы к задачам.
type TaskHandler struct {
	service TaskService
}

// NewTaskHandler создает новый экземпляр TaskHandler.
func NewTaskHandler(s TaskService) *TaskHandler {
	return &TaskHandler{service: s}
}

// List возвращает задачи отпуска из ?vacationId=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "TaskHandler:List")
	if !ok {
		return
	}
	tasks, err := h.service.ListTasks(r.Context(), uid, r.URL.Query().Get("vacationId"))
	if err != nil {
		writeServiceError(w, r, "TaskHandler:List", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create создает задачу.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "TaskHandler:Create")
	if !ok {
		return
	}
	var in services.TaskInput
	if !decodeJSON(w, r, "TaskHandler:Create", &in) {
		return
	}
	task, err := h.service.CreateTask(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, r, "TaskHandler:Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update применяет частичное обновление задачи.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "TaskHandler:Update")
	if !ok {
		return
	}
	var patch models.TaskPatch
	if !decodeJSON(w, r, "TaskHandler:Update", &patch) {
		return
	}
	task, err := h.service.UpdateTask(r.Context(), uid, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, "TaskHandler:Update", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete удаляет задачу.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "TaskHandler:Delete")
	if !ok {
		return
	}
	if err := h.service.DeleteTask(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "TaskHandler:Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
