package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
)

// VacationService определяет интерфейс для сервиса отпусков.
type VacationService interface {
	ListVacations(ctx context.Context, userID string, status *models.VacationStatus) ([]models.Vacation, error)
	GetVacation(ctx context.Context, userID, vacationID string) (*models.Vacation, error)
	CreateVacation(ctx context.Context, userID string, in services.VacationInput) (*models.Vacation, error)
	UpdateVacation(ctx context.Context, userID, vacationID string, patch models.VacationPatch) (*models.Vacation, error)
	DeleteVacation(ctx context.Context, userID, vacationID string) (*models.CascadeResult, error)
}

// VacationHandler обрабатывает HTTP-запросы к отпускам.
type VacationHandler struct {
	service VacationService
}

// NewVacationHandler создает новый экземпляр VacationHandler.
func NewVacationHandler(s VacationService) *VacationHandler {
	return &VacationHandler{service: s}
}

// DeleteVacationResponse - ответ на удаление отпуска.
type DeleteVacationResponse struct {
	Message string               `json:"message"`
	Deleted models.CascadeResult `json:"deleted"`
}

// List возвращает отпуска пользователя, ?status= фильтрует по статусу.
func (h *VacationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "VacationHandler:List")
	if !ok {
		return
	}
	var status *models.VacationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.VacationStatus(raw)
		status = &s
	}

	list, err := h.service.ListVacations(r.Context(), uid, status)
	if err != nil {
		writeServiceError(w, r, "VacationHandler:List", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create создает отпуск.
func (h *VacationHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "VacationHandler:Create")
	if !ok {
		return
	}
	var in services.VacationInput
	if !decodeJSON(w, r, "VacationHandler:Create", &in) {
		return
	}

	v, err := h.service.CreateVacation(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, r, "VacationHandler:Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Get возвращает отпуск по ID.
func (h *VacationHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "VacationHandler:Get")
	if !ok {
		return
	}
	v, err := h.service.GetVacation(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "VacationHandler:Get", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Update применяет частичное обновление.
func (h *VacationHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "VacationHandler:Update")
	if !ok {
		return
	}
	var patch models.VacationPatch
	if !decodeJSON(w, r, "VacationHandler:Update", &patch) {
		return
	}

	v, err := h.service.UpdateVacation(r.Context(), uid, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, "VacationHandler:Update", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Delete удаляет отпуск со всеми зависимыми данными и сообщает, что удалено.
func (h *VacationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "VacationHandler:Delete")
	if !ok {
		return
	}
	result, err := h.service.DeleteVacation(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "VacationHandler:Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteVacationResponse{Message: "Отпуск удален", Deleted: *result})
}
