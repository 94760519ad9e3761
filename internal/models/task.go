package models

import "time"

// TaskStatus - состояние задачи.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid сообщает, что статус известен.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// TaskPriority - приоритет задачи.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid сообщает, что приоритет известен.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task - задача в рамках одного отпуска.
type Task struct {
	ID          string       `db:"id" json:"id"`
	VacationID  string       `db:"vacation_id" json:"vacationId"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Status      TaskStatus   `db:"status" json:"status"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	DueDate     *Date        `db:"due_date" json:"dueDate"`
	AssignedTo  *string      `db:"assigned_to" json:"assignedTo"`
	CompletedAt *time.Time   `db:"completed_at" json:"completedAt"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// SetStatus переводит задачу в новый статус.
// CompletedAt выставляется при входе в completed и сбрасывается при выходе из него.
func (t *Task) SetStatus(s TaskStatus, now time.Time) {
	switch {
	case s == TaskCompleted && t.Status != TaskCompleted:
		completedAt := now
		t.CompletedAt = &completedAt
	case s != TaskCompleted:
		t.CompletedAt = nil
	}
	t.Status = s
}

// TaskPatch - частичное обновление задачи.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *Date         `json:"dueDate,omitempty"`
	AssignedTo  *string       `json:"assignedTo,omitempty"`
}

// Apply применяет патч. Смена статуса идет через SetStatus.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.SetStatus(*p.Status, now)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			due := *p.DueDate
			t.DueDate = &due
		}
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == "" {
			t.AssignedTo = nil
		} else {
			assignee := *p.AssignedTo
			t.AssignedTo = &assignee
		}
	}
}
