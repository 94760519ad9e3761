package models

import "time"

// VacationStatus - стадия планирования отпуска.
type VacationStatus string

const (
	VacationPlanning  VacationStatus = "planning"
	VacationConfirmed VacationStatus = "confirmed"
	VacationActive    VacationStatus = "active"
	VacationCompleted VacationStatus = "completed"
)

// Valid сообщает, что статус известен.
func (s VacationStatus) Valid() bool {
	switch s {
	case VacationPlanning, VacationConfirmed, VacationActive, VacationCompleted:
		return true
	}
	return false
}

// Vacation - отпуск пользователя, верхний уровень планирования.
type Vacation struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"userId"`
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	StartDate     Date           `db:"start_date" json:"startDate"`
	EndDate       Date           `db:"end_date" json:"endDate"`
	Status        VacationStatus `db:"status" json:"status"`
	Destinations  Destinations   `db:"destinations" json:"destinations"`
	Collaborators StringList     `db:"collaborators" json:"collaborators"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// VacationPatch - частичное обновление отпуска.
type VacationPatch struct {
	Title         *string         `json:"title,omitempty"`
	Description   *string         `json:"description,omitempty"`
	StartDate     *Date           `json:"startDate,omitempty"`
	EndDate       *Date           `json:"endDate,omitempty"`
	Status        *VacationStatus `json:"status,omitempty"`
	Destinations  *Destinations   `json:"destinations,omitempty"`
	Collaborators *StringList     `json:"collaborators,omitempty"`
}

// Apply применяет непустые поля патча к отпуску.
func (v *Vacation) Apply(p VacationPatch) {
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.StartDate != nil {
		v.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		v.EndDate = *p.EndDate
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.Destinations != nil {
		v.Destinations = *p.Destinations
	}
	if p.Collaborators != nil {
		v.Collaborators = *p.Collaborators
	}
}

// CascadeResult - сколько зависимых строк удалено вместе с отпуском.
type CascadeResult struct {
	Tasks      int64 `json:"tasks"`
	Documents  int64 `json:"documents"`
	Expenses   int64 `json:"expenses"`
	Categories int64 `json:"categories"`
	Budget     bool  `json:"budget"`
}
