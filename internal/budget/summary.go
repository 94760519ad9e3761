// Package budget считает производные показатели бюджета по списку расходов:
// потрачено всего и по категориям, остаток, процент использования и уровень
// тревоги. Ничего не сохраняет, результат зависит только от входных данных.
package budget

import (
	"github.com/shopspring/decimal"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
)

// Status - уровень тревоги по бюджету. Только для отображения.
type Status string

const (
	StatusOK         Status = "ok"
	StatusWarning    Status = "warning"
	StatusOverBudget Status = "over-budget"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(75)
)

// CategorySummary - показатели одной категории.
// Utilization равен nil, если на категорию ничего не выделено.
type CategorySummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Color       string           `json:"color"`
	Allocated   decimal.Decimal  `json:"allocated"`
	Spent       decimal.Decimal  `json:"spent"`
	Remaining   decimal.Decimal  `json:"remaining"`
	Utilization *decimal.Decimal `json:"utilizationPercent"`
}

// Summary - сводка по бюджету.
type Summary struct {
	TotalBudget    decimal.Decimal   `json:"totalBudget"`
	TotalSpent     decimal.Decimal   `json:"totalSpent"`
	Remaining      decimal.Decimal   `json:"remaining"`
	Utilization    *decimal.Decimal  `json:"utilizationPercent"`
	Status         Status            `json:"status"`
	AllocatedTotal decimal.Decimal   `json:"allocatedTotal"`
	Unallocated    decimal.Decimal   `json:"unallocated"`
	OverAllocated  bool              `json:"overAllocated"`
	Uncategorized  decimal.Decimal   `json:"uncategorized"`
	Categories     []CategorySummary `json:"categories"`

	spent     map[string]decimal.Decimal
	allocated map[string]decimal.Decimal
}

// Summarize строит сводку по бюджету и его расходам.
// Порядок расходов на результат не влияет.
func Summarize(b models.Budget, expenses []models.Expense) Summary {
	s := Summary{
		TotalBudget:    b.TotalBudget,
		TotalSpent:     TotalSpent(expenses),
		AllocatedTotal: decimal.Zero,
		Uncategorized:  decimal.Zero,
		Categories:     make([]CategorySummary, 0, len(b.Categories)),
		spent:          make(map[string]decimal.Decimal),
		allocated:      make(map[string]decimal.Decimal, len(b.Categories)),
	}
	s.Remaining = s.TotalBudget.Sub(s.TotalSpent)

	for _, c := range b.Categories {
		s.allocated[c.ID] = c.Allocated
		s.AllocatedTotal = s.AllocatedTotal.Add(c.Allocated)
	}

	for _, e := range expenses {
		if e.CategoryID == nil {
			s.Uncategorized = s.Uncategorized.Add(e.Amount)
			continue
		}
		id := *e.CategoryID
		s.spent[id] = s.CategorySpent(id).Add(e.Amount)
		if _, known := s.allocated[id]; !known {
			s.Uncategorized = s.Uncategorized.Add(e.Amount)
		}
	}

	for _, c := range b.Categories {
		spent := s.CategorySpent(c.ID)
		cs := CategorySummary{
			ID:        c.ID,
			Name:      c.Name,
			Color:     c.Color,
			Allocated: c.Allocated,
			Spent:     spent,
			Remaining: c.Allocated.Sub(spent),
		}
		if pct, ok := Utilization(spent, c.Allocated); ok {
			cs.Utilization = &pct
		}
		s.Categories = append(s.Categories, cs)
	}

	if pct, ok := Utilization(s.TotalSpent, s.TotalBudget); ok {
		s.Utilization = &pct
	}
	s.Status = Classify(s.TotalSpent, s.TotalBudget)
	s.Unallocated = s.TotalBudget.Sub(s.AllocatedTotal)
	s.OverAllocated = s.AllocatedTotal.GreaterThan(s.TotalBudget)
	return s
}

// CategorySpent возвращает сумму расходов категории, 0 если расходов нет.
func (s Summary) CategorySpent(categoryID string) decimal.Decimal {
	if v, ok := s.spent[categoryID]; ok {
		return v
	}
	return decimal.Zero
}

// UtilizationPercent возвращает процент использования категории.
// ok == false, если категория неизвестна или на нее ничего не выделено.
func (s Summary) UtilizationPercent(categoryID string) (decimal.Decimal, bool) {
	allocated, known := s.allocated[categoryID]
	if !known {
		return decimal.Zero, false
	}
	return Utilization(s.CategorySpent(categoryID), allocated)
}

// TotalSpent суммирует все расходы независимо от категории.
func TotalSpent(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// Utilization считает spent/limit*100 с округлением до сотых.
// При limit <= 0 результат не определен.
func Utilization(spent, limit decimal.Decimal) (decimal.Decimal, bool) {
	if !limit.IsPositive() {
		return decimal.Zero, false
	}
	return spent.Mul(hundred).Div(limit).Round(2), true
}

// Classify определяет уровень тревоги: от 75% - warning, свыше 100% - over-budget.
// Любой расход при нулевом бюджете считается перерасходом.
func Classify(spent, total decimal.Decimal) Status {
	pct, ok := Utilization(spent, total)
	if !ok {
		if spent.IsPositive() {
			return StatusOverBudget
		}
		return StatusOK
	}
	switch {
	case pct.GreaterThan(hundred):
		return StatusOverBudget
	case pct.GreaterThanOrEqual(warningThreshold):
		return StatusWarning
	default:
		return StatusOK
	}
}
