package services

import (
	"errors"
	"fmt"
)

// Кастомные ошибки сервисов.
var (
	ErrInvalidCredentials   = errors.New("неверный e-mail или пароль")
	ErrEmailTaken           = errors.New("e-mail уже зарегистрирован")
	ErrUserNotFound         = errors.New("пользователь не найден")
	ErrVacationNotFound     = errors.New("отпуск не найден")
	ErrTaskNotFound         = errors.New("задача не найдена")
	ErrBudgetNotFound       = errors.New("бюджет не найден")
	ErrExpenseNotFound      = errors.New("расход не найден")
	ErrDocumentNotFound     = errors.New("документ не найден")
	ErrNotificationNotFound = errors.New("уведомление не найдено")
	ErrFileNotFound         = errors.New("файл не найден")
	ErrUnsupportedFileType  = errors.New("неподдерживаемый тип файла")
	ErrFileTooLarge         = errors.New("файл слишком большой")
)

// ValidationError - ошибка проверки входных данных для конкретного поля.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
