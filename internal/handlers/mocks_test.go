package handlers_test

import (
	"context"
	"io"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/gRaffRO/VoyageHub-sub000/internal/handlers"
	"github.com/gRaffRO/VoyageHub-sub000/internal/middleware"
	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
	rootmodels "github.com/gRaffRO/VoyageHub-sub000/models"
)

const testUserID = "user-1"

// withUser кладет ID пользователя в контекст, как это делает middleware аутентификации.
func withUser(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), testUserID))
}

// --- Mock AuthService --- //

type MockAuthService struct {
	mock.Mock
}

var _ handlers.AuthService = (*MockAuthService)(nil)

func (m *MockAuthService) Register(ctx context.Context, req rootmodels.RegisterRequest) (*rootmodels.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rootmodels.AuthResponse), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockAuthService) Login(ctx context.Context, req rootmodels.LoginRequest) (*rootmodels.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rootmodels.AuthResponse), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*rootmodels.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rootmodels.User), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockAuthService) UpdateProfile(
	ctx context.Context,
	userID string,
	req rootmodels.ProfileUpdateRequest,
) (*rootmodels.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rootmodels.User), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

// --- Mock VacationService --- //

type MockVacationService struct {
	mock.Mock
}

var _ handlers.VacationService = (*MockVacationService)(nil)

func (m *MockVacationService) ListVacations(
	ctx context.Context,
	userID string,
	status *models.VacationStatus,
) ([]models.Vacation, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vacation), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockVacationService) GetVacation(ctx context.Context, userID, vacationID string) (*models.Vacation, error) {
	args := m.Called(ctx, userID, vacationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vacation), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockVacationService) CreateVacation(
	ctx context.Context,
	userID string,
	in services.VacationInput,
) (*models.Vacation, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vacation), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockVacationService) UpdateVacation(
	ctx context.Context,
	userID, vacationID string,
	patch models.VacationPatch,
) (*models.Vacation, error) {
	args := m.Called(ctx, userID, vacationID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vacation), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockVacationService) DeleteVacation(
	ctx context.Context,
	userID, vacationID string,
) (*models.CascadeResult, error) {
	args := m.Called(ctx, userID, vacationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CascadeResult), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

// --- Mock TaskService --- //

type MockTaskService struct {
	mock.Mock
}

var _ handlers.TaskService = (*MockTaskService)(nil)

func (m *MockTaskService) ListTasks(ctx context.Context, userID, vacationID string) ([]models.Task, error) {
	args := m.Called(ctx, userID, vacationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockTaskService) CreateTask(ctx context.Context, userID string, in services.TaskInput) (*models.Task, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	userID, taskID string,
	patch models.TaskPatch,
) (*models.Task, error) {
	args := m.Called(ctx, userID, taskID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockTaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

// --- Mock BudgetService --- //

type MockBudgetService struct {
	mock.Mock
}

var _ handlers.BudgetService = (*MockBudgetService)(nil)

func (m *MockBudgetService) GetBudget(ctx context.Context, userID, vacationID string) (*services.BudgetView, error) {
	args := m.Called(ctx, userID, vacationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BudgetView), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockBudgetService) UpdateBudget(
	ctx context.Context,
	userID, vacationID string,
	patch models.BudgetPatch,
) (*services.BudgetView, error) {
	args := m.Called(ctx, userID, vacationID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BudgetView), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockBudgetService) AddExpense(
	ctx context.Context,
	userID, vacationID string,
	in services.ExpenseInput,
) (*models.Expense, error) {
	args := m.Called(ctx, userID, vacationID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockBudgetService) UpdateExpense(
	ctx context.Context,
	userID, expenseID string,
	patch models.ExpensePatch,
) (*models.Expense, error) {
	args := m.Called(ctx, userID, expenseID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockBudgetService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	return m.Called(ctx, userID, expenseID).Error(0)
}

// --- Mock DocumentService --- //

type MockDocumentService struct {
	mock.Mock
}

var _ handlers.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) ListDocuments(ctx context.Context, userID, vacationID string) ([]models.Document, error) {
	args := m.Called(ctx, userID, vacationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockDocumentService) UploadDocument(
	ctx context.Context,
	userID string,
	meta services.DocumentUpload,
	file io.Reader,
) (*models.Document, error) {
	args := m.Called(ctx, userID, meta, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockDocumentService) UpdateDocument(
	ctx context.Context,
	userID, documentID string,
	patch models.DocumentPatch,
) (*models.Document, error) {
	args := m.Called(ctx, userID, documentID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	return m.Called(ctx, userID, documentID).Error(0)
}

func (m *MockDocumentService) OpenFile(
	ctx context.Context,
	userID, fileKey string,
) (*models.Document, io.ReadCloser, error) {
	args := m.Called(ctx, userID, fileKey)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	doc, okDoc := args.Get(0).(*models.Document)
	rc, okRC := args.Get(1).(io.ReadCloser)
	if !okDoc || !okRC {
		panic("mock OpenFile returns wrong types")
	}
	return doc, rc, args.Error(2)
}

// --- Mock NotificationService --- //

type MockNotificationService struct {
	mock.Mock
}

var _ handlers.NotificationService = (*MockNotificationService)(nil)

func (m *MockNotificationService) ListNotifications(
	ctx context.Context,
	userID string,
	unreadOnly bool,
) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockNotificationService) CreateNotification(
	ctx context.Context,
	userID string,
	in services.NotificationInput,
) (*models.Notification, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1) //nolint:errcheck // Acceptable for mocks
}

func (m *MockNotificationService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}
