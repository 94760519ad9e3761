package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
)

// BudgetService определяет интерфейс для сервиса бюджета.
type BudgetService interface {
	GetBudget(ctx context.Context, userID, vacationID string) (*services.BudgetView, error)
	UpdateBudget(ctx context.Context, userID, vacationID string, patch models.BudgetPatch) (*services.BudgetView, error)
	AddExpense(ctx context.Context, userID, vacationID string, in services.ExpenseInput) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, patch models.ExpensePatch) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
}

// BudgetHandler обрабатывает HTTP-запросы к бюджету и расходам.
type BudgetHandler struct {
	service BudgetService
}

// NewBudgetHandler создает новый экземпляр BudgetHandler.
func NewBudgetHandler(s BudgetService) *BudgetHandler {
	return &BudgetHandler{service: s}
}

// Get возвращает бюджет отпуска со сводкой.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "BudgetHandler:Get")
	if !ok {
		return
	}
	view, err := h.service.GetBudget(r.Context(), uid, chi.URLParam(r, "vacationId"))
	if err != nil {
		writeServiceError(w, r, "BudgetHandler:Get", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update меняет сумму, валюту или категории бюджета.
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "BudgetHandler:Update")
	if !ok {
		return
	}
	var patch models.BudgetPatch
	if !decodeJSON(w, r, "BudgetHandler:Update", &patch) {
		return
	}
	view, err := h.service.UpdateBudget(r.Context(), uid, chi.URLParam(r, "vacationId"), patch)
	if err != nil {
		writeServiceError(w, r, "BudgetHandler:Update", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddExpense добавляет расход.
func (h *BudgetHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "BudgetHandler:AddExpense")
	if !ok {
		return
	}
	var in services.ExpenseInput
	if !decodeJSON(w, r, "BudgetHandler:AddExpense", &in) {
		return
	}
	e, err := h.service.AddExpense(r.Context(), uid, chi.URLParam(r, "vacationId"), in)
	if err != nil {
		writeServiceError(w, r, "BudgetHandler:AddExpense", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateExpense применяет частичное обновление расхода.
func (h *BudgetHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "BudgetHandler:UpdateExpense")
	if !ok {
		return
	}
	var patch models.ExpensePatch
	if !decodeJSON(w, r, "BudgetHandler:UpdateExpense", &patch) {
		return
	}
	e, err := h.service.UpdateExpense(r.Context(), uid, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, "BudgetHandler:UpdateExpense", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteExpense удаляет расход.
func (h *BudgetHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "BudgetHandler:DeleteExpense")
	if !ok {
		return
	}
	if err := h.service.DeleteExpense(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "BudgetHandler:DeleteExpense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
