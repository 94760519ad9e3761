package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata" // Часовые пояса пользователей без системной tzdata

	"github.com/gRaffRO/VoyageHub-sub000/internal/config"
	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
)

const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// main - точка входа. Ошибки команд приводят к ненулевому коду выхода.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("Ошибка выполнения сервера", "error", err)
		os.Exit(1)
	}
}

// serve поднимает зависимости и обслуживает HTTP до отмены ctx.
func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("Запуск сервера VoyageHub...", "port", cfg.Server.Port, "db", cfg.Database.Driver,
		"storage", cfg.Storage.Backend)

	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer deps.Close()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      setupRouter(deps.routes),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		var serveErr error
		if cfg.TLSEnabled() {
			slog.Info("Запуск HTTPS-сервера", "addr", server.Addr, "cert", cfg.Server.CertFile)
			serveErr = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			slog.Info("Запуск HTTP-сервера", "addr", server.Addr)
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	slog.Info("Сервер остановлен.")
	return nil
}

// migrate применяет миграции и завершается.
func migrate(ctx context.Context, cfg *config.Config) error {
	db, err := repository.NewDB(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("Ошибка закрытия соединения с БД", "error", closeErr)
		}
	}()

	if err = repository.Migrate(ctx, db.DB, cfg.Database.Driver); err != nil {
		return err
	}
	slog.Info("Миграции применены.", "driver", cfg.Database.Driver)
	return nil
}
