package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gRaffRO/VoyageHub-sub000/internal/client"
	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
	rootmodels "github.com/gRaffRO/VoyageHub-sub000/models"
)

const testToken = "test-jwt-token"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPClient_Login(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantErr     error
		wantErrText string
	}{
		{
			name: "Успех",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/auth/login", r.URL.Path)
				var req rootmodels.LoginRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "alice@example.com", req.Email)
				writeJSON(w, http.StatusOK, rootmodels.AuthResponse{
					User:  &rootmodels.User{ID: "user-1", Email: req.Email},
					Token: testToken,
				})
			},
		},
		{
			name: "Неверный пароль (401)",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Неверный email или пароль"})
			},
			wantErr:     client.ErrAuthorization,
			wantErrText: "Неверный email или пароль",
		},
		{
			name: "Пустой токен",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, rootmodels.AuthResponse{})
			},
			wantErrText: "пустой токен",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := client.NewHTTPClient(server.URL, nil)
			resp, err := c.Login(context.Background(), "alice@example.com", "password123")
			if tt.wantErr != nil || tt.wantErrText != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Contains(t, err.Error(), tt.wantErrText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testToken, resp.Token)
			assert.Equal(t, "user-1", resp.User.ID)
		})
	}
}

func TestHTTPClient_TokenRequired(t *testing.T) {
	c := client.NewHTTPClient("http://127.0.0.1:1", nil)
	ctx := context.Background()

	_, err := c.ListVacations(ctx)
	assert.ErrorIs(t, err, client.ErrNoToken)
	_, err = c.DownloadFile(ctx, "abc.pdf")
	assert.ErrorIs(t, err, client.ErrNoToken)
	_, err = c.UploadDocument(ctx, client.Upload{Data: strings.NewReader("x")})
	assert.ErrorIs(t, err, client.ErrNoToken)
}

func TestHTTPClient_Vacations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/vacations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in services.VacationInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusCreated, models.Vacation{ID: "vac-1", Title: in.Title, Status: models.VacationPlanning})
	})
	mux.HandleFunc("GET /api/vacations/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "vac-1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Отпуск не найден"})
			return
		}
		writeJSON(w, http.StatusOK, models.Vacation{ID: "vac-1"})
	})
	mux.HandleFunc("DELETE /api/vacations/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Отпуск удален",
			"deleted": models.CascadeResult{Tasks: 2, Documents: 1, Budget: true},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := client.NewHTTPClient(server.URL+"/", server.Client())
	c.SetAuthToken(testToken)
	ctx := context.Background()

	v, err := c.CreateVacation(ctx, services.VacationInput{Title: "Рим"})
	require.NoError(t, err)
	assert.Equal(t, "vac-1", v.ID)
	assert.Equal(t, "Рим", v.Title)

	_, err = c.GetVacation(ctx, "vac-2")
	assert.ErrorIs(t, err, client.ErrNotFound)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Отпуск не найден", apiErr.Message)

	result, err := c.DeleteVacation(ctx, "vac-1")
	require.NoError(t, err)
	assert.Equal(t, models.CascadeResult{Tasks: 2, Documents: 1, Budget: true}, *result)
}

func TestHTTPClient_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "vac-1", r.URL.Query().Get("vacationId"))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "не указано название", "field": "title"})
	}))
	defer server.Close()

	c := client.NewHTTPClient(server.URL, nil)
	c.SetAuthToken(testToken)

	_, err := c.ListTasks(context.Background(), "vac-1")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "title", apiErr.Field)
	assert.NotErrorIs(t, err, client.ErrNotFound)
	assert.Contains(t, err.Error(), "(title)")
}

func TestHTTPClient_Budget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/budget/vac-1/expenses":
			var in services.ExpenseInput
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusCreated, models.Expense{ID: "exp-1", Amount: in.Amount})
		case r.Method == http.MethodGet && r.URL.Path == "/api/budget/vac-1":
			_, _ = io.WriteString(w, `{"budget":{"id":"b-1","totalBudget":"1000","currency":"EUR"},
				"expenses":[],"summary":{"totalSpent":"250","remaining":"750","status":"ok","utilizationPercent":"25"}}`)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer server.Close()

	c := client.NewHTTPClient(server.URL, nil)
	c.SetAuthToken(testToken)
	ctx := context.Background()

	e, err := c.AddExpense(ctx, "vac-1", services.ExpenseInput{Description: "Музей", Amount: decimal.NewFromInt(250)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(e.Amount))

	view, err := c.GetBudget(ctx, "vac-1")
	require.NoError(t, err)
	assert.Equal(t, "EUR", view.Budget.Currency)
	assert.Equal(t, "750", view.Summary.Remaining.String())
	require.NotNil(t, view.Summary.Utilization)
	assert.Equal(t, "25", view.Summary.Utilization.String())

	_, err = c.UpdateBudget(ctx, "vac-2", models.BudgetPatch{})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTeapot, apiErr.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusTeapot), apiErr.Message)
}

func TestHTTPClient_UploadAndDownload(t *testing.T) {
	const content = "%PDF-1.4 тестовый файл"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/documents/upload":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "vac-1", r.FormValue("vacationId"))
			assert.Equal(t, "passport", r.FormValue("type"))
			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "passport.pdf", hdr.Filename)
			assert.Equal(t, "application/pdf", hdr.Header.Get("Content-Type"))
			data, _ := io.ReadAll(f)
			assert.Equal(t, content, string(data))
			writeJSON(w, http.StatusCreated, models.Document{ID: "doc-1", FileKey: "k.pdf", FileSize: int64(len(data))})
		case "/api/documents/file/k.pdf":
			_, _ = io.WriteString(w, content)
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Файл не найден"})
		}
	}))
	defer server.Close()

	c := client.NewHTTPClient(server.URL, nil)
	c.SetAuthToken(testToken)
	ctx := context.Background()

	doc, err := c.UploadDocument(ctx, client.Upload{
		VacationID:  "vac-1",
		Type:        models.DocumentPassport,
		FileName:    "passport.pdf",
		ContentType: "application/pdf",
		Data:        strings.NewReader(content),
	})
	require.NoError(t, err)
	assert.Equal(t, "k.pdf", doc.FileKey)
	assert.Equal(t, int64(len(content)), doc.FileSize)

	rc, err := c.DownloadFile(ctx, "k.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, content, string(data))

	_, err = c.DownloadFile(ctx, "other.pdf")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestHTTPClient_Notifications(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "true", r.URL.Query().Get("unread"))
			writeJSON(w, http.StatusOK, []models.Notification{{ID: "n-1", Title: "Бюджет"}})
		case http.MethodPatch:
			assert.Equal(t, "/api/notifications/read-all", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]int64{"updated": 3})
		}
	}))
	defer server.Close()

	c := client.NewHTTPClient(server.URL, nil)
	c.SetAuthToken(testToken)
	ctx := context.Background()

	list, err := c.ListNotifications(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "n-1", list[0].ID)

	n, err := c.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
