package repository

import (
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode = "23505"
)

// Кастомные ошибки репозиториев.
var (
	ErrUserNotFound         = errors.New("пользователь не найден")
	ErrEmailTaken           = errors.New("e-mail уже зарегистрирован")
	ErrVacationNotFound     = errors.New("отпуск не найден")
	ErrTaskNotFound         = errors.New("задача не найдена")
	ErrBudgetNotFound       = errors.New("бюджет не найден")
	ErrBudgetExists         = errors.New("бюджет для отпуска уже существует")
	ErrExpenseNotFound      = errors.New("расход не найден")
	ErrDocumentNotFound     = errors.New("документ не найден")
	ErrNotificationNotFound = errors.New("уведомление не найдено")
)

// isUniqueViolation распознает нарушение уникальности в обоих драйверах.
func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
