package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency - валюта бюджета, если в настройках пользователя она не задана.
const DefaultCurrency = "USD"

// Budget - финансовый план отпуска. У отпуска не больше одного бюджета.
type Budget struct {
	ID          string           `db:"id" json:"id"`
	VacationID  string           `db:"vacation_id" json:"vacationId"`
	TotalBudget decimal.Decimal  `db:"total_budget" json:"totalBudget"`
	Currency    string           `db:"currency" json:"currency"`
	Categories  []BudgetCategory `db:"-" json:"categories"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

// BudgetCategory - статья расходов с выделенной суммой.
type BudgetCategory struct {
	ID        string          `db:"id" json:"id"`
	BudgetID  string          `db:"budget_id" json:"-"`
	Name      string          `db:"name" json:"name"`
	Allocated decimal.Decimal `db:"allocated" json:"allocated"`
	Color     string          `db:"color" json:"color"`
	Position  int             `db:"position" json:"-"`
}

// Expense - фактический расход по бюджету.
type Expense struct {
	ID          string          `db:"id" json:"id"`
	BudgetID    string          `db:"budget_id" json:"budgetId"`
	CategoryID  *string         `db:"category_id" json:"categoryId"`
	Description string          `db:"description" json:"description"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Date        Date            `db:"spent_on" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// BudgetPatch - частичное обновление бюджета.
// Если Categories задан, список категорий заменяется целиком.
type BudgetPatch struct {
	TotalBudget *decimal.Decimal  `json:"totalBudget,omitempty"`
	Currency    *string           `json:"currency,omitempty"`
	Categories  *[]BudgetCategory `json:"categories,omitempty"`
}

// ExpensePatch - частичное обновление расхода.
// Пустая строка в CategoryID снимает категорию.
type ExpensePatch struct {
	CategoryID  *string          `json:"categoryId,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *Date            `json:"date,omitempty"`
}

// Apply применяет патч к расходу.
func (e *Expense) Apply(p ExpensePatch) {
	if p.CategoryID != nil {
		if *p.CategoryID == "" {
			e.CategoryID = nil
		} else {
			categoryID := *p.CategoryID
			e.CategoryID = &categoryID
		}
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
}
