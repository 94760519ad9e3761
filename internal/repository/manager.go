package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DBTX - общий интерфейс *sqlx.DB и *sqlx.Tx, с которым работают репозитории.
// Запросы пишутся с плейсхолдерами "?" и проходят через Rebind.
type DBTX interface {
	sqlx.ExtContext
}

// Manager выдает репозитории, привязанные к одному соединению или транзакции.
type Manager interface {
	Users() UserRepository
	Vacations() VacationRepository
	Tasks() TaskRepository
	Budgets() BudgetRepository
	Documents() DocumentRepository
	Notifications() NotificationRepository

	// WithTx выполняет fn в одной транзакции: commit при успехе,
	// rollback при ошибке или панике. Внутри транзакции fn получает
	// Manager, все репозитории которого работают через эту транзакцию.
	// Вложенный вызов переиспользует текущую транзакцию.
	WithTx(ctx context.Context, fn func(tx Manager) error) error
}

type sqlManager struct {
	db *sqlx.DB // nil внутри транзакции
	q  DBTX
}

// Убедимся, что sqlManager удовлетворяет интерфейсу Manager.
var _ Manager = (*sqlManager)(nil)

// NewManager создает Manager поверх пула соединений.
func NewManager(db *sqlx.DB) Manager {
	return &sqlManager{db: db, q: db}
}

func (m *sqlManager) Users() UserRepository                 { return NewUserRepository(m.q) }
func (m *sqlManager) Vacations() VacationRepository         { return NewVacationRepository(m.q) }
func (m *sqlManager) Tasks() TaskRepository                 { return NewTaskRepository(m.q) }
func (m *sqlManager) Budgets() BudgetRepository             { return NewBudgetRepository(m.q) }
func (m *sqlManager) Documents() DocumentRepository         { return NewDocumentRepository(m.q) }
func (m *sqlManager) Notifications() NotificationRepository { return NewNotificationRepository(m.q) }

func (m *sqlManager) WithTx(ctx context.Context, fn func(tx Manager) error) (err error) {
	if m.db == nil {
		return fn(m)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("ошибка фиксации транзакции: %w", commitErr)
		}
	}()

	err = fn(&sqlManager{q: tx})
	return err
}

// selectContext выполняет sqlx.SelectContext с переписанными плейсхолдерами.
func selectContext(ctx context.Context, db DBTX, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, db, dest, db.Rebind(query), args...)
}

// execCount выполняет запрос и возвращает число затронутых строк.
func execCount(ctx context.Context, db DBTX, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
