package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gRaffRO/VoyageHub-sub000/internal/handlers"
	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
)

func setupDocumentRouter(h *handlers.DocumentHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/documents", h.List)
	r.Post("/documents/upload", h.Upload)
	r.Get("/documents/file/{filename}", h.Download)
	r.Patch("/documents/{id}", h.Update)
	r.Delete("/documents/{id}", h.Delete)
	return r
}

// multipartBody собирает форму загрузки. Пустой contentType не выставляет заголовок части.
func multipartBody(t *testing.T, fields map[string]string, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocumentHandler_Upload(t *testing.T) {
	fields := map[string]string{
		"vacationId":     "v1",
		"name":           "Паспорт",
		"type":           "passport",
		"expirationDate": "2031-05-20",
		"sharedWith":     "a@example.com, b@example.com",
		"notes":          "скан",
	}

	t.Run("Успешная загрузка", func(t *testing.T) {
		mockService := new(MockDocumentService)
		mockService.On("UploadDocument", mock.Anything, testUserID, mock.MatchedBy(func(m services.DocumentUpload) bool {
			return m.VacationID == "v1" &&
				m.Type == models.DocumentPassport &&
				m.ExpirationDate != nil && m.ExpirationDate.String() == "2031-05-20" &&
				len(m.SharedWith) == 2 && m.SharedWith[1] == "b@example.com" &&
				m.FileName == "scan.pdf" && m.ContentType == "application/pdf" && m.Size == 8
		}), mock.Anything).Return(&models.Document{ID: "d1", FileKey: "k.pdf"}, nil).Once()

		body, ct := multipartBody(t, fields, "scan.pdf", "application/pdf", "%PDF-1.7")
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		setupDocumentRouter(handlers.NewDocumentHandler(mockService)).ServeHTTP(rr, withUser(req))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"fileName":"k.pdf"`)
		mockService.AssertExpectations(t)
	})

	t.Run("Тип по расширению файла", func(t *testing.T) {
		mockService := new(MockDocumentService)
		mockService.On("UploadDocument", mock.Anything, testUserID, mock.MatchedBy(func(m services.DocumentUpload) bool {
			return m.ContentType == "image/png"
		}), mock.Anything).Return(&models.Document{ID: "d2"}, nil).Once()

		body, ct := multipartBody(t, map[string]string{"vacationId": "v1"}, "photo.PNG", "application/octet-stream", "png")
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		setupDocumentRouter(handlers.NewDocumentHandler(mockService)).ServeHTTP(rr, withUser(req))

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	tests := []struct {
		name           string
		fields         map[string]string
		fileName       string
		serviceErr     error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Нет файла",
			fields:         fields,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"field":"file"`,
		},
		{
			name:           "Некорректная дата",
			fields:         map[string]string{"vacationId": "v1", "expirationDate": "завтра"},
			fileName:       "scan.pdf",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"field":"expirationDate"`,
		},
		{
			name:           "Неподдерживаемый тип",
			fields:         fields,
			fileName:       "scan.pdf",
			serviceErr:     services.ErrUnsupportedFileType,
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "Слишком большой файл",
			fields:         fields,
			fileName:       "scan.pdf",
			serviceErr:     services.ErrFileTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDocumentService)
			if tt.serviceErr != nil {
				mockService.On("UploadDocument", mock.Anything, testUserID, mock.Anything, mock.Anything).
					Return(nil, tt.serviceErr).Once()
			}
			body, ct := multipartBody(t, tt.fields, tt.fileName, "application/pdf", "%PDF")
			req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
			req.Header.Set("Content-Type", ct)
			rr := httptest.NewRecorder()
			setupDocumentRouter(handlers.NewDocumentHandler(mockService)).ServeHTTP(rr, withUser(req))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}

	t.Run("Не multipart", func(t *testing.T) {
		mockService := new(MockDocumentService)
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		setupDocumentRouter(handlers.NewDocumentHandler(mockService)).ServeHTTP(rr, withUser(req))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "UploadDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDocumentHandler_Download(t *testing.T) {
	mockService := new(MockDocumentService)
	r := setupDocumentRouter(handlers.NewDocumentHandler(mockService))

	doc := &models.Document{ID: "d1", Name: "Паспорт", FileKey: "abc.pdf", MimeType: "application/pdf", FileSize: 8}
	mockService.On("OpenFile", mock.Anything, testUserID, "abc.pdf").
		Return(doc, io.NopCloser(strings.NewReader("%PDF-1.7")), nil).Once()
	mockService.On("OpenFile", mock.Anything, testUserID, "missing.pdf").
		Return(nil, nil, services.ErrFileNotFound).Once()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodGet, "/documents/file/abc.pdf", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "%PDF-1.7", rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, "8", rr.Header().Get("Content-Length"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "inline")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodGet, "/documents/file/missing.pdf", nil)))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	mockService.AssertExpectations(t)
}

func TestDocumentHandler_ListUpdateDelete(t *testing.T) {
	mockService := new(MockDocumentService)
	r := setupDocumentRouter(handlers.NewDocumentHandler(mockService))

	mockService.On("ListDocuments", mock.Anything, testUserID, "v1").
		Return([]models.Document{{ID: "d1", Type: models.DocumentVisa}}, nil).Once()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodGet, "/documents?vacationId=v1", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"type":"visa"`)

	notes := "оригинал у Анны"
	mockService.On("UpdateDocument", mock.Anything, testUserID, "d1", models.DocumentPatch{Notes: &notes}).
		Return(&models.Document{ID: "d1", Notes: notes}, nil).Once()
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodPatch, "/documents/d1",
		strings.NewReader(`{"notes":"оригинал у Анны"}`))))
	assert.Equal(t, http.StatusOK, rr.Code)

	mockService.On("DeleteDocument", mock.Anything, testUserID, "d1").Return(nil).Once()
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, withUser(httptest.NewRequest(http.MethodDelete, "/documents/d1", nil)))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	mockService.AssertExpectations(t)
}
