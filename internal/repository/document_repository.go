package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
)

const documentColumns = `d.id, d.vacation_id, d.user_id, d.name, d.type, d.file_key, d.file_url,
	d.file_size, d.mime_type, d.expiration_date, d.shared_with, d.notes, d.created_at, d.updated_at`

// DocumentRepository определяет методы для работы с метаданными документов.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id, userID string) (*models.Document, error)
	GetByFileKey(ctx context.Context, fileKey, userID string) (*models.Document, error)
	ListByVacation(ctx context.Context, vacationID string) ([]models.Document, error)
	ListFileKeysByVacation(ctx context.Context, vacationID string) ([]string, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
	DeleteByVacation(ctx context.Context, vacationID string) (int64, error)
}

type sqlDocumentRepository struct {
	db DBTX
}

// NewDocumentRepository создает новый экземпляр репозитория документов.
func NewDocumentRepository(db DBTX) DocumentRepository {
	return &sqlDocumentRepository{db: db}
}

// Create сохраняет метаданные загруженного документа.
func (r *sqlDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := r.db.Rebind(`INSERT INTO documents (id, vacation_id, user_id, name, type, file_key, file_url,
		file_size, mime_type, expiration_date, shared_with, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.VacationID, doc.UserID, doc.Name, doc.Type, doc.FileKey, doc.FileURL,
		doc.FileSize, doc.MimeType, doc.ExpirationDate, doc.SharedWith, doc.Notes, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на создание документа: %w", err)
	}
	return nil
}

// GetByID находит документ, если он принадлежит отпуску пользователя.
func (r *sqlDocumentRepository) GetByID(ctx context.Context, id, userID string) (*models.Document, error) {
	return r.getOne(ctx, `d.id = ?`, id, userID)
}

// GetByFileKey находит документ по ключу файла в хранилище.
func (r *sqlDocumentRepository) GetByFileKey(ctx context.Context, fileKey, userID string) (*models.Document, error) {
	return r.getOne(ctx, `d.file_key = ?`, fileKey, userID)
}

func (r *sqlDocumentRepository) getOne(ctx context.Context, cond string, arg any, userID string) (*models.Document, error) {
	query := r.db.Rebind(`SELECT ` + documentColumns + `
		FROM documents d JOIN vacations v ON v.id = d.vacation_id
		WHERE ` + cond + ` AND v.user_id = ?`)

	var doc models.Document
	if err := r.db.QueryRowxContext(ctx, query, arg, userID).StructScan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение документа: %w", err)
	}
	return &doc, nil
}

// ListByVacation возвращает документы отпуска, новые первыми.
func (r *sqlDocumentRepository) ListByVacation(ctx context.Context, vacationID string) ([]models.Document, error) {
	docs := make([]models.Document, 0)
	query := `SELECT ` + documentColumns + ` FROM documents d WHERE d.vacation_id = ? ORDER BY d.created_at DESC, d.id`
	if err := selectContext(ctx, r.db, &docs, query, vacationID); err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка документов: %w", err)
	}
	return docs, nil
}

// ListFileKeysByVacation возвращает ключи файлов всех документов отпуска.
func (r *sqlDocumentRepository) ListFileKeysByVacation(ctx context.Context, vacationID string) ([]string, error) {
	keys := make([]string, 0)
	if err := selectContext(ctx, r.db, &keys, `SELECT file_key FROM documents WHERE vacation_id = ?`, vacationID); err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на получение ключей файлов: %w", err)
	}
	return keys, nil
}

// Update сохраняет изменяемые метаданные документа.
func (r *sqlDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := r.db.Rebind(`UPDATE documents
		SET name = ?, type = ?, expiration_date = ?, shared_with = ?, notes = ?, updated_at = ?
		WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		doc.Name, doc.Type, doc.ExpirationDate, doc.SharedWith, doc.Notes, doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на обновление документа: %w", err)
	}
	return expectAffected(res, ErrDocumentNotFound)
}

// Delete удаляет метаданные документа.
func (r *sqlDocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM documents WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса на удаление документа: %w", err)
	}
	return expectAffected(res, ErrDocumentNotFound)
}

// DeleteByVacation удаляет все документы отпуска и возвращает их число.
func (r *sqlDocumentRepository) DeleteByVacation(ctx context.Context, vacationID string) (int64, error) {
	n, err := execCount(ctx, r.db, `DELETE FROM documents WHERE vacation_id = ?`, vacationID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления документов отпуска: %w", err)
	}
	return n, nil
}
