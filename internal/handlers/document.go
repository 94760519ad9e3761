package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
)

// multipartMemory - сколько данных формы держится в памяти, остальное уходит во временные файлы.
const multipartMemory = 1 << 20

// DocumentService определяет интерфейс для сервиса документов.
type DocumentService interface {
	ListDocuments(ctx context.Context, userID, vacationID string) ([]models.Document, error)
	UploadDocument(ctx context.Context, userID string, meta services.DocumentUpload, file io.Reader) (*models.Document, error)
	UpdateDocument(ctx context.Context, userID, documentID string, patch models.DocumentPatch) (*models.Document, error)
	DeleteDocument(ctx context.Context, userID, documentID string) error
	OpenFile(ctx context.Context, userID, fileKey string) (*models.Document, io.ReadCloser, error)
}

// DocumentHandler обрабатывает HTTP-запросы к документам и их файлам.
type DocumentHandler struct {
	service DocumentService
}

// NewDocumentHandler создает новый экземпляр DocumentHandler.
func NewDocumentHandler(s DocumentService) *DocumentHandler {
	return &DocumentHandler{service: s}
}

// List возвращает документы отпуска из ?vacationId=.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "DocumentHandler:List")
	if !ok {
		return
	}
	docs, err := h.service.ListDocuments(r.Context(), uid, r.URL.Query().Get("vacationId"))
	if err != nil {
		writeServiceError(w, r, "DocumentHandler:List", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Upload принимает multipart-форму: поле file и метаданные документа.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "DocumentHandler:Upload")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, "DocumentHandler:Upload", services.ErrFileTooLarge)
			return
		}
		slog.Info("[DocumentHandler:Upload] Ошибка разбора формы", "error", err)
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("[DocumentHandler:Upload] Не удалось удалить временные файлы формы", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Файл не передан", Field: "file"})
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("[DocumentHandler:Upload] Ошибка закрытия файла формы", "error", closeErr)
		}
	}()

	meta, field, err := uploadMeta(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: field})
		return
	}
	meta.FileName = header.Filename
	meta.Size = header.Size
	meta.ContentType = header.Header.Get("Content-Type")
	if meta.ContentType == "" || meta.ContentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
			meta.ContentType = byExt
		}
	}

	doc, err := h.service.UploadDocument(r.Context(), uid, meta, file)
	if err != nil {
		writeServiceError(w, r, "DocumentHandler:Upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// uploadMeta читает текстовые поля формы. При ошибке возвращает имя поля.
func uploadMeta(r *http.Request) (services.DocumentUpload, string, error) {
	meta := services.DocumentUpload{
		VacationID: r.FormValue("vacationId"),
		Name:       r.FormValue("name"),
		Type:       models.DocumentType(r.FormValue("type")),
		Notes:      r.FormValue("notes"),
	}
	if raw := strings.TrimSpace(r.FormValue("expirationDate")); raw != "" {
		exp, err := models.ParseDate(raw)
		if err != nil {
			return meta, "expirationDate", err
		}
		meta.ExpirationDate = &exp
	}
	shared, err := parseSharedWith(r.FormValue("sharedWith"))
	if err != nil {
		return meta, "sharedWith", err
	}
	meta.SharedWith = shared
	return meta, "", nil
}

// parseSharedWith принимает JSON-массив или список через запятую.
func parseSharedWith(raw string) (models.StringList, error) {
	raw = strings.TrimSpace(raw)
	list := models.StringList{}
	if raw == "" {
		return list, nil
	}
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, errors.New("sharedWith должен быть JSON-массивом строк")
		}
		return list, nil
	}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list, nil
}

// Update меняет метаданные документа.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "DocumentHandler:Update")
	if !ok {
		return
	}
	var patch models.DocumentPatch
	if !decodeJSON(w, r, "DocumentHandler:Update", &patch) {
		return
	}
	doc, err := h.service.UpdateDocument(r.Context(), uid, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, "DocumentHandler:Update", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Delete удаляет документ и его файл.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "DocumentHandler:Delete")
	if !ok {
		return
	}
	if err := h.service.DeleteDocument(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "DocumentHandler:Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download отдает файл документа владельцу.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r, "DocumentHandler:Download")
	if !ok {
		return
	}

	doc, rc, err := h.service.OpenFile(r.Context(), uid, chi.URLParam(r, "filename"))
	if err != nil {
		writeServiceError(w, r, "DocumentHandler:Download", err)
		return
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			slog.Warn("[DocumentHandler:Download] Ошибка закрытия файла", "error", closeErr)
		}
	}()

	w.Header().Set("Content-Type", doc.MimeType)
	if doc.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	}
	fileName := doc.Name
	if filepath.Ext(fileName) == "" {
		fileName += filepath.Ext(doc.FileKey)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": fileName}))
	w.WriteHeader(http.StatusOK)

	if _, err = io.Copy(w, rc); err != nil {
		slog.Warn("[DocumentHandler:Download] Ошибка копирования файла в ответ", "key", doc.FileKey, "error", err)
	}
}
