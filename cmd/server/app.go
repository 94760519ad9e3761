package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/gRaffRO/VoyageHub-sub000/internal/auth"
	"github.com/gRaffRO/VoyageHub-sub000/internal/config"
	"github.com/gRaffRO/VoyageHub-sub000/internal/handlers"
	appmiddleware "github.com/gRaffRO/VoyageHub-sub000/internal/middleware"
	"github.com/gRaffRO/VoyageHub-sub000/internal/realtime"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
	"github.com/gRaffRO/VoyageHub-sub000/internal/services"
	"github.com/gRaffRO/VoyageHub-sub000/internal/storage"
)

// routes - все, что нужно роутеру.
type routes struct {
	tokens         appmiddleware.TokenValidator
	metrics        *appmiddleware.Metrics
	gatherer       prometheus.Gatherer
	allowedOrigins []string

	auth          *handlers.AuthHandler
	vacations     *handlers.VacationHandler
	tasks         *handlers.TaskHandler
	budgets       *handlers.BudgetHandler
	documents     *handlers.DocumentHandler
	notifications *handlers.NotificationHandler
	ws            http.Handler
}

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db     *sqlx.DB
	files  storage.FileStorage
	hub    *realtime.Hub
	routes *routes
}

// Close освобождает ресурсы.
func (d *dependencies) Close() {
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			slog.Warn("Ошибка закрытия соединения с БД", "error", err)
		}
	}
}

// configureJSON задает формат денежных сумм в ответах API: числа, а не строки.
func configureJSON() {
	decimal.MarshalJSONWithoutQuotes = true
}

// setupDependencies открывает БД, применяет миграции и собирает
// хранилище, сервисы и обработчики.
func setupDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	configureJSON()

	db, err := repository.NewDB(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	deps := &dependencies{db: db}

	if err = repository.Migrate(ctx, db.DB, cfg.Database.Driver); err != nil {
		deps.Close()
		return nil, err
	}

	deps.files, err = newFileStorage(ctx, cfg.Storage)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("ошибка инициализации хранилища файлов: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps.hub = realtime.NewHub()
	deps.routes = buildRoutes(
		repository.NewManager(db),
		deps.files,
		deps.hub,
		auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		reg,
		cfg.Server.AllowedOrigins,
	)
	return deps, nil
}

// buildRoutes создает сервисы и обработчики поверх готовых хранилищ.
func buildRoutes(
	repos repository.Manager,
	files storage.FileStorage,
	hub *realtime.Hub,
	tokens *auth.TokenManager,
	reg *prometheus.Registry,
	allowedOrigins []string,
) *routes {
	authService := services.NewAuthService(repos.Users(), tokens)
	vacationService := services.NewVacationService(repos, files)
	taskService := services.NewTaskService(repos, hub)
	budgetService := services.NewBudgetService(repos, hub)
	documentService := services.NewDocumentService(repos, files)
	notificationService := services.NewNotificationService(repos)

	return &routes{
		tokens:         tokens,
		metrics:        appmiddleware.NewMetrics(reg),
		gatherer:       reg,
		allowedOrigins: allowedOrigins,

		auth:          handlers.NewAuthHandler(authService),
		vacations:     handlers.NewVacationHandler(vacationService),
		tasks:         handlers.NewTaskHandler(taskService),
		budgets:       handlers.NewBudgetHandler(budgetService),
		documents:     handlers.NewDocumentHandler(documentService),
		notifications: handlers.NewNotificationHandler(notificationService),
		ws:            realtime.NewHandler(hub, vacationService, allowedOrigins),
	}
}

// newFileStorage выбирает бэкенд хранилища файлов.
func newFileStorage(ctx context.Context, cfg config.StorageConfig) (storage.FileStorage, error) {
	switch cfg.Backend {
	case storage.BackendLocal:
		return storage.NewLocalStorage(cfg.UploadDir)
	case storage.BackendMinio:
		return storage.NewMinioClient(ctx, storage.MinioConfig{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKey,
			SecretAccessKey: cfg.Minio.SecretKey,
			UseSSL:          cfg.Minio.UseSSL,
			BucketName:      cfg.Minio.Bucket,
			Region:          cfg.Minio.Region,
		})
	case storage.BackendS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			BaseEndpoint:    cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKey,
			SecretAccessKey: cfg.S3.SecretKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("неподдерживаемое хранилище: %q", cfg.Backend)
	}
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(rt *routes) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(slog.Default()))
	r.Use(middleware.Recoverer)
	r.Use(rt.metrics.Handler)
	r.Use(cors.Handler(corsOptions(rt.allowedOrigins)))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))

	authenticator := appmiddleware.Authenticator(rt.tokens)

	r.Route("/api", func(r chi.Router) {
		// Публичные маршруты
		r.Post("/auth/register", rt.auth.Register)
		r.Post("/auth/login", rt.auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/auth/profile", rt.auth.Profile)
			r.Patch("/auth/profile", rt.auth.UpdateProfile)

			r.Route("/vacations", func(r chi.Router) {
				r.Get("/", rt.vacations.List)
				r.Post("/", rt.vacations.Create)
				r.Get("/{id}", rt.vacations.Get)
				r.Patch("/{id}", rt.vacations.Update)
				r.Delete("/{id}", rt.vacations.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", rt.tasks.List)
				r.Post("/", rt.tasks.Create)
				r.Patch("/{id}", rt.tasks.Update)
				r.Delete("/{id}", rt.tasks.Delete)
			})

			r.Route("/budget", func(r chi.Router) {
				r.Patch("/expenses/{id}", rt.budgets.UpdateExpense)
				r.Delete("/expenses/{id}", rt.budgets.DeleteExpense)
				r.Get("/{vacationId}", rt.budgets.Get)
				r.Patch("/{vacationId}", rt.budgets.Update)
				r.Post("/{vacationId}/expenses", rt.budgets.AddExpense)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", rt.documents.List)
				r.Post("/upload", rt.documents.Upload)
				r.Get("/file/{filename}", rt.documents.Download)
				r.Patch("/{id}", rt.documents.Update)
				r.Delete("/{id}", rt.documents.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notifications.List)
				r.Post("/", rt.notifications.Create)
				r.Patch("/read-all", rt.notifications.MarkAllRead)
				r.Patch("/{id}/read", rt.notifications.MarkRead)
				r.Delete("/{id}", rt.notifications.Delete)
			})
		})
	})

	r.With(authenticator).Get("/ws", rt.ws.ServeHTTP)
	return r
}

func corsOptions(allowed []string) cors.Options {
	origins := allowed
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: len(allowed) > 0,
		MaxAge:           300,
	}
}
