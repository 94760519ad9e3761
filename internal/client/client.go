// Package client - HTTP-клиент REST API VoyageHub.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/gRaffRO/VoyageHub-sub000/internal/handlers"
	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
	rootmodels "github.com/gRaffRO/VoyageHub-sub000/models"
)

// Ошибки клиента.
var (
	// ErrAuthorization сигнализирует об ошибке авторизации (401).
	ErrAuthorization = errors.New("ошибка авторизации")
	// ErrNotFound - ресурс не найден или принадлежит другому пользователю (404).
	ErrNotFound = errors.New("ресурс не найден")
	// ErrNoToken - метод требует входа, а токена нет.
	ErrNoToken = errors.New("токен аутентификации отсутствует")
)

// APIError - ответ сервера с кодом ошибки.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ошибка API (статус %d): %s (%s)", e.StatusCode, e.Message, e.Field)
	}
	return fmt.Sprintf("ошибка API (статус %d): %s", e.StatusCode, e.Message)
}

// Unwrap позволяет проверять 401 и 404 через errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthorization
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// Upload - загружаемый документ.
type Upload struct {
	VacationID  string
	Name        string
	Type        models.DocumentType
	FileName    string
	ContentType string
	Data        io.Reader
}

// Client определяет интерфейс для взаимодействия с API сервера VoyageHub.
type Client interface {
	// Register регистрирует пользователя и запоминает выданный токен.
	Register(ctx context.Context, req rootmodels.RegisterRequest) (*rootmodels.AuthResponse, error)
	// Login выполняет вход и запоминает выданный токен.
	Login(ctx context.Context, email, password string) (*rootmodels.AuthResponse, error)
	Profile(ctx context.Context) (*rootmodels.User, error)

	ListVacations(ctx context.Context) ([]models.Vacation, error)
	CreateVacation(ctx context.Context, in services.VacationInput) (*models.Vacation, error)
	GetVacation(ctx context.Context, id string) (*models.Vacation, error)
	// DeleteVacation удаляет отпуск со всеми зависимыми данными.
	DeleteVacation(ctx context.Context, id string) (*models.CascadeResult, error)

	ListTasks(ctx context.Context, vacationID string) ([]models.Task, error)
	CreateTask(ctx context.Context, in services.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)

	GetBudget(ctx context.Context, vacationID string) (*services.BudgetView, error)
	UpdateBudget(ctx context.Context, vacationID string, patch models.BudgetPatch) (*services.BudgetView, error)
	AddExpense(ctx context.Context, vacationID string, in services.ExpenseInput) (*models.Expense, error)

	UploadDocument(ctx context.Context, up Upload) (*models.Document, error)
	// DownloadFile возвращает поток файла, который нужно закрыть.
	DownloadFile(ctx context.Context, fileKey string) (io.ReadCloser, error)

	ListNotifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) (int64, error)

	SetAuthToken(token string)
}

// httpClient реализует интерфейс Client по HTTP.
type httpClient struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// Убедимся, что httpClient удовлетворяет интерфейсу Client.
var _ Client = (*httpClient)(nil)

// NewHTTPClient создает клиент. hc == nil - используется http.DefaultClient.
func NewHTTPClient(baseURL string, hc *http.Client) Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &httpClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// SetAuthToken устанавливает токен для аутентифицированных запросов.
func (c *httpClient) SetAuthToken(token string) {
	c.authToken = token
}

func (c *httpClient) Register(ctx context.Context, req rootmodels.RegisterRequest) (*rootmodels.AuthResponse, error) {
	var resp rootmodels.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, http.StatusCreated, &resp, false); err != nil {
		return nil, fmt.Errorf("ошибка регистрации: %w", err)
	}
	c.authToken = resp.Token
	return &resp, nil
}

func (c *httpClient) Login(ctx context.Context, email, password string) (*rootmodels.AuthResponse, error) {
	body := rootmodels.LoginRequest{Email: email, Password: password}
	var resp rootmodels.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, http.StatusOK, &resp, false); err != nil {
		return nil, fmt.Errorf("ошибка входа: %w", err)
	}
	if resp.Token == "" {
		return nil, errors.New("сервер вернул пустой токен")
	}
	c.authToken = resp.Token
	return &resp, nil
}

func (c *httpClient) Profile(ctx context.Context) (*rootmodels.User, error) {
	var u rootmodels.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, http.StatusOK, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *httpClient) ListVacations(ctx context.Context) ([]models.Vacation, error) {
	var out []models.Vacation
	if err := c.do(ctx, http.MethodGet, "/api/vacations", nil, nil, http.StatusOK, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) CreateVacation(ctx context.Context, in services.VacationInput) (*models.Vacation, error) {
	var v models.Vacation
	if err := c.do(ctx, http.MethodPost, "/api/vacations", nil, in, http.StatusCreated, &v, true); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *httpClient) GetVacation(ctx context.Context, id string) (*models.Vacation, error) {
	var v models.Vacation
	if err := c.do(ctx, http.MethodGet, "/api/vacations/"+url.PathEscape(id), nil, nil, http.StatusOK, &v, true); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *httpClient) DeleteVacation(ctx context.Context, id string) (*models.CascadeResult, error) {
	var resp handlers.DeleteVacationResponse
	if err := c.do(ctx, http.MethodDelete, "/api/vacations/"+url.PathEscape(id), nil, nil, http.StatusOK, &resp, true); err != nil {
		return nil, err
	}
	return &resp.Deleted, nil
}

func (c *httpClient) ListTasks(ctx context.Context, vacationID string) ([]models.Task, error) {
	var out []models.Task
	q := url.Values{"vacationId": {vacationID}}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q, nil, http.StatusOK, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) CreateTask(ctx context.Context, in services.TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, in, http.StatusCreated, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *httpClient) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), nil, patch, http.StatusOK, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *httpClient) GetBudget(ctx context.Context, vacationID string) (*services.BudgetView, error) {
	var view services.BudgetView
	if err := c.do(ctx, http.MethodGet, "/api/budget/"+url.PathEscape(vacationID), nil, nil, http.StatusOK, &view, true); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *httpClient) UpdateBudget(
	ctx context.Context,
	vacationID string,
	patch models.BudgetPatch,
) (*services.BudgetView, error) {
	var view services.BudgetView
	if err := c.do(ctx, http.MethodPatch, "/api/budget/"+url.PathEscape(vacationID), nil, patch, http.StatusOK, &view, true); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *httpClient) AddExpense(ctx context.Context, vacationID string, in services.ExpenseInput) (*models.Expense, error) {
	var e models.Expense
	path := "/api/budget/" + url.PathEscape(vacationID) + "/expenses"
	if err := c.do(ctx, http.MethodPost, path, nil, in, http.StatusCreated, &e, true); err != nil {
		return nil, err
	}
	return &e, nil
}

// UploadDocument отправляет файл как multipart/form-data.
func (c *httpClient) UploadDocument(ctx context.Context, up Upload) (*models.Document, error) {
	if c.authToken == "" {
		return nil, ErrNoToken
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{"vacationId": up.VacationID, "name": up.Name, "type": string(up.Type)}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("ошибка формирования формы: %w", err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, up.FileName))
	if up.ContentType != "" {
		h.Set("Content-Type", up.ContentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования формы: %w", err)
	}
	if _, err = io.Copy(part, up.Data); err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("ошибка формирования формы: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса на загрузку: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на загрузку: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}
	var doc models.Document
	if err = json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("ошибка декодирования документа: %w", err)
	}
	return &doc, nil
}

func (c *httpClient) DownloadFile(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	if c.authToken == "" {
		return nil, ErrNoToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/documents/file/"+url.PathEscape(fileKey), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса на скачивание: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на скачивание: %w", err)
	}
	// Тело закрывает вызывающая сторона.
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

func (c *httpClient) ListNotifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	var q url.Values
	if unreadOnly {
		q = url.Values{"unread": {strconv.FormatBool(true)}}
	}
	var out []models.Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", q, nil, http.StatusOK, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var resp handlers.MarkAllReadResponse
	if err := c.do(ctx, http.MethodPatch, "/api/notifications/read-all", nil, nil, http.StatusOK, &resp, true); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

// do выполняет JSON-запрос. Ответ с кодом, отличным от want, превращается в *APIError.
func (c *httpClient) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
	want int,
	out any,
	authed bool,
) error {
	if authed && c.authToken == "" {
		return ErrNoToken
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка кодирования запроса: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка декодирования ответа %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload handlers.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.Field = payload.Field
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
