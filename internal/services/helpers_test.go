package services_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
	"github.com/gRaffRO/VoyageHub-sub000/internal/realtime"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
	"github.com/gRaffRO/VoyageHub-sub000/internal/storage"
	rootmodels "github.com/gRaffRO/VoyageHub-sub000/models"
)

// newTestRepos открывает SQLite в памяти с миграциями.
func newTestRepos(t *testing.T) repository.Manager {
	t.Helper()
	ctx := context.Background()
	db, err := repository.NewDB(ctx, repository.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.Migrate(ctx, db.DB, repository.DriverSQLite))
	return repository.NewManager(db)
}

// seedUser создает пользователя с заданной валютой.
func seedUser(t *testing.T, repos repository.Manager, id, currency string) {
	t.Helper()
	prefs := rootmodels.DefaultPreferences()
	prefs.Currency = currency
	ts := time.Now().UTC()
	require.NoError(t, repos.Users().CreateUser(context.Background(), &rootmodels.User{
		ID: id, Email: id + "@example.com", Name: id, PasswordHash: "x",
		Preferences: prefs, CreatedAt: ts, UpdatedAt: ts,
	}))
}

func vacationInput(title string) services.VacationInput {
	return services.VacationInput{
		Title:     title,
		StartDate: models.NewDate(2025, time.August, 1),
		EndDate:   models.NewDate(2025, time.August, 10),
	}
}

// memStorage - файловое хранилище в памяти.
type memStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	deleteErr error
	deleted   []string
}

var _ storage.FileStorage = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) UploadFile(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	return nil
}

func (m *memStorage) DownloadFile(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) DeleteFile(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, key)
	return nil
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// recordingPublisher запоминает опубликованные события.
type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(ev realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// faultyManager подменяет отдельные репозитории внутри транзакции.
type faultyManager struct {
	repository.Manager
	budgets   func(repository.BudgetRepository) repository.BudgetRepository
	documents func(repository.DocumentRepository) repository.DocumentRepository
}

func (m faultyManager) Budgets() repository.BudgetRepository {
	if m.budgets != nil {
		return m.budgets(m.Manager.Budgets())
	}
	return m.Manager.Budgets()
}

func (m faultyManager) Documents() repository.DocumentRepository {
	if m.documents != nil {
		return m.documents(m.Manager.Documents())
	}
	return m.Manager.Documents()
}

func (m faultyManager) WithTx(ctx context.Context, fn func(tx repository.Manager) error) error {
	return m.Manager.WithTx(ctx, func(tx repository.Manager) error {
		return fn(faultyManager{Manager: tx, budgets: m.budgets, documents: m.documents})
	})
}

// failingCategories падает на удалении категорий.
type failingCategories struct {
	repository.BudgetRepository
	err error
}

func (f failingCategories) DeleteCategories(context.Context, string) (int64, error) {
	return 0, f.err
}

// failingDocumentCreate падает на сохранении документа.
type failingDocumentCreate struct {
	repository.DocumentRepository
	err error
}

func (f failingDocumentCreate) Create(context.Context, *models.Document) error {
	return f.err
}
