package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
	"github.com/gRaffRO/VoyageHub-sub000/internal/storage"
)

// MaxUploadSize - максимальный размер загружаемого файла.
const MaxUploadSize int64 = 10 << 20

// FileURLPrefix - путь, по которому отдаются файлы документов.
const FileURLPrefix = "/api/documents/file/"

// allowedMimeTypes - допустимые типы файлов и расширение по умолчанию для каждого.
var allowedMimeTypes = map[string]string{
	"application/pdf":    ".pdf",
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"image/gif":          ".gif",
	"image/webp":         ".webp",
	"text/plain":         ".txt",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// DocumentUpload - метаданные загружаемого документа.
type DocumentUpload struct {
	VacationID     string
	Name           string
	Type           models.DocumentType
	ExpirationDate *models.Date
	SharedWith     models.StringList
	Notes          string

	FileName    string // исходное имя файла у клиента
	ContentType string
	Size        int64
}

// DocumentService определяет интерфейс для сервиса документов.
type DocumentService interface {
	ListDocuments(ctx context.Context, userID, vacationID string) ([]models.Document, error)
	UploadDocument(ctx context.Context, userID string, meta DocumentUpload, file io.Reader) (*models.Document, error)
	UpdateDocument(ctx context.Context, userID, documentID string, patch models.DocumentPatch) (*models.Document, error)
	DeleteDocument(ctx context.Context, userID, documentID string) error
	OpenFile(ctx context.Context, userID, fileKey string) (*models.Document, io.ReadCloser, error)
}

// Убедимся, что documentService удовлетворяет интерфейсу DocumentService.
var _ DocumentService = (*documentService)(nil)

type documentService struct {
	repos repository.Manager
	files storage.FileStorage
}

// NewDocumentService создает новый экземпляр сервиса документов.
func NewDocumentService(repos repository.Manager, files storage.FileStorage) DocumentService {
	return &documentService{repos: repos, files: files}
}

// ListDocuments возвращает документы отпуска пользователя.
func (s *documentService) ListDocuments(ctx context.Context, userID, vacationID string) ([]models.Document, error) {
	if vacationID == "" {
		return nil, invalid("vacationId", "не указан отпуск")
	}
	if _, err := getOwnedVacation(ctx, s.repos, userID, vacationID); err != nil {
		return nil, err
	}
	docs, err := s.repos.Documents().ListByVacation(ctx, vacationID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка документов: %w", err)
	}
	return docs, nil
}

// UploadDocument сохраняет файл, затем строку документа.
// Если строку сохранить не удалось, файл удаляется.
func (s *documentService) UploadDocument(
	ctx context.Context,
	userID string,
	meta DocumentUpload,
	file io.Reader,
) (*models.Document, error) {
	if meta.VacationID == "" {
		return nil, invalid("vacationId", "не указан отпуск")
	}
	if meta.Size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	mimeType := normalizeMime(meta.ContentType)
	defaultExt, ok := allowedMimeTypes[mimeType]
	if !ok {
		return nil, ErrUnsupportedFileType
	}

	doc := &models.Document{
		ID:         newID(),
		VacationID: meta.VacationID,
		UserID:     userID,
		Name:       strings.TrimSpace(meta.Name),
		Type:       meta.Type,
		FileSize:   meta.Size,
		MimeType:   mimeType,
		SharedWith: meta.SharedWith,
		Notes:      meta.Notes,
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSpace(filepath.Base(meta.FileName))
	}
	if doc.Type == "" {
		doc.Type = models.DocumentOther
	}
	doc.Apply(models.DocumentPatch{ExpirationDate: meta.ExpirationDate})
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	if _, err := getOwnedVacation(ctx, s.repos, userID, meta.VacationID); err != nil {
		return nil, err
	}

	doc.FileKey = newID() + fileExtension(meta.FileName, defaultExt)
	doc.FileURL = FileURLPrefix + doc.FileKey

	if err := s.files.UploadFile(ctx, doc.FileKey, file, meta.Size, mimeType); err != nil {
		return nil, fmt.Errorf("ошибка сохранения файла: %w", err)
	}

	ts := now()
	doc.CreatedAt, doc.UpdatedAt = ts, ts
	if err := s.repos.Documents().Create(ctx, doc); err != nil {
		if delErr := s.files.DeleteFile(ctx, doc.FileKey); delErr != nil {
			slog.Warn("[DocumentService] Не удалось удалить файл после ошибки сохранения",
				"key", doc.FileKey, "error", delErr)
		}
		return nil, fmt.Errorf("ошибка сохранения документа: %w", err)
	}

	slog.Info("[DocumentService] Документ загружен", "document_id", doc.ID, "size", doc.FileSize)
	return doc, nil
}

// UpdateDocument меняет метаданные документа.
func (s *documentService) UpdateDocument(
	ctx context.Context,
	userID, documentID string,
	patch models.DocumentPatch,
) (*models.Document, error) {
	doc, err := s.getOwnedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	doc.Apply(patch)
	doc.Name = strings.TrimSpace(doc.Name)
	if err = validateDocument(doc); err != nil {
		return nil, err
	}
	doc.UpdatedAt = now()

	if err = s.repos.Documents().Update(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("ошибка обновления документа: %w", err)
	}
	return doc, nil
}

// DeleteDocument удаляет строку документа, затем файл.
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	doc, err := s.getOwnedDocument(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err = s.repos.Documents().Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("ошибка удаления документа: %w", err)
	}
	if err = s.files.DeleteFile(ctx, doc.FileKey); err != nil {
		slog.Warn("[DocumentService] Не удалось удалить файл документа", "key", doc.FileKey, "error", err)
	}
	return nil
}

// OpenFile открывает файл документа пользователя. Поток нужно закрыть.
func (s *documentService) OpenFile(
	ctx context.Context,
	userID, fileKey string,
) (*models.Document, io.ReadCloser, error) {
	if storage.ValidateKey(fileKey) != nil {
		return nil, nil, ErrFileNotFound
	}
	doc, err := s.repos.Documents().GetByFileKey(ctx, fileKey, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("ошибка получения документа: %w", err)
	}

	rc, err := s.files.DownloadFile(ctx, fileKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			slog.Warn("[DocumentService] Файл документа отсутствует в хранилище", "key", fileKey)
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	return doc, rc, nil
}

func (s *documentService) getOwnedDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	doc, err := s.repos.Documents().GetByID(ctx, documentID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("ошибка получения документа: %w", err)
	}
	return doc, nil
}

func validateDocument(d *models.Document) error {
	if d.Name == "" {
		return invalid("name", "название документа не может быть пустым")
	}
	if !d.Type.Valid() {
		return invalid("type", "неизвестный тип документа")
	}
	for i, email := range d.SharedWith {
		if _, err := normalizeEmail(email); err != nil {
			return invalid(fmt.Sprintf("sharedWith[%d]", i), "некорректный e-mail")
		}
	}
	return nil
}

// normalizeMime отбрасывает параметры вида "; charset=utf-8".
func normalizeMime(contentType string) string {
	mimeType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// fileExtension берет расширение исходного файла, если оно безопасно.
func fileExtension(fileName, fallback string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) < 2 || len(ext) > 6 {
		return fallback
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return fallback
		}
	}
	return ext
}
