package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gRaffRO/VoyageHub-sub000/internal/config"
)

// clearEnv сбрасывает переменные окружения, влияющие на конфигурацию.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "TLS_CERT_FILE", "TLS_KEY_FILE", "DB_DRIVER", "DATABASE_DSN",
		"JWT_SECRET", "JWT_TTL", "STORAGE_BACKEND", "UPLOAD_DIR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

// runCmd выполняет корневую команду и возвращает конфигурацию,
// переданную в serve или migrate.
func runCmd(t *testing.T, args ...string) (served, migrated *config.Config, err error) {
	t.Helper()
	cmd := newRootCmdWith(
		func(_ context.Context, cfg *config.Config) error { served = cfg; return nil },
		func(_ context.Context, cfg *config.Config) error { migrated = cfg; return nil },
	)
	if args == nil {
		args = []string{} // иначе cobra возьмет os.Args
	}
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return served, migrated, err
}

func TestRootCmd(t *testing.T) {
	t.Run("Все параметры из флагов", func(t *testing.T) {
		clearEnv(t)
		cfg, _, err := runCmd(t, "serve",
			"--port=8080", "--cert-file=cert.pem", "--key-file=key.pem",
			"--db-driver=postgres", "--database-dsn=postgres://localhost/voyage",
			"--storage=local", "--upload-dir=/tmp/up", "--log-level=debug")
		// Секрета нет ни во флагах, ни в окружении.
		require.Error(t, err)
		assert.Nil(t, cfg)

		t.Setenv("JWT_SECRET", "secret")
		cfg, _, err = runCmd(t, "serve",
			"--port=8080", "--cert-file=cert.pem", "--key-file=key.pem",
			"--db-driver=postgres", "--database-dsn=postgres://localhost/voyage",
			"--upload-dir=/tmp/up", "--log-level=debug")
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.True(t, cfg.TLSEnabled())
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "postgres://localhost/voyage", cfg.Database.DSN)
		assert.Equal(t, "/tmp/up", cfg.Storage.UploadDir)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("Параметры из переменных окружения", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("DATABASE_DSN", "env.db")

		cfg, _, err := runCmd(t)
		require.NoError(t, err)
		require.NotNil(t, cfg, "без подкоманды выполняется serve")
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "env.db", cfg.Database.DSN)
		assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	})

	t.Run("Флаг важнее окружения", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SERVER_PORT", "9090")

		cfg, _, err := runCmd(t, "-p", "7000")
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Server.Port)
	})

	t.Run("Значения по умолчанию", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "secret")

		cfg, _, err := runCmd(t, "serve")
		require.NoError(t, err)
		assert.Equal(t, config.DefaultPort, cfg.Server.Port)
		assert.Equal(t, config.DefaultDSN, cfg.Database.DSN)
		assert.False(t, cfg.TLSEnabled())
	})

	t.Run("Файл конфигурации", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "voyagehub.yaml")
		require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: file-secret\nserver:\n  port: 4000\n"), 0o600))

		cfg, _, err := runCmd(t, "serve", "--config", path)
		require.NoError(t, err)
		assert.Equal(t, 4000, cfg.Server.Port)
		assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	})

	t.Run("Migrate не требует секрета", func(t *testing.T) {
		clearEnv(t)
		served, migrated, err := runCmd(t, "migrate", "--database-dsn=migrate.db")
		require.NoError(t, err)
		assert.Nil(t, served)
		require.NotNil(t, migrated)
		assert.Equal(t, "migrate.db", migrated.Database.DSN)
	})

	t.Run("Неверные параметры", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "secret")

		_, _, err := runCmd(t, "serve", "--cert-file=cert.pem")
		assert.Error(t, err, "сертификат без ключа")

		_, _, err = runCmd(t, "serve", "--db-driver=mysql")
		assert.Error(t, err)

		_, _, err = runCmd(t, "serve", "--storage=ftp")
		assert.Error(t, err)

		_, _, err = runCmd(t, "serve", "лишний-аргумент")
		assert.Error(t, err)
	})
}
