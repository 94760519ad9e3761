package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gRaffRO/VoyageHub-sub000/internal/config"
	"github.com/gRaffRO/VoyageHub-sub000/pkg/logging"
)

// flagValues - значения флагов командной строки. Применяются поверх
// файла конфигурации и переменных окружения, только если флаг задан явно.
type flagValues struct {
	configPath string
	port       int
	certFile   string
	keyFile    string
	dbDriver   string
	dbDSN      string
	storage    string
	uploadDir  string
	logLevel   string
}

// runFunc - действие команды над готовой конфигурацией.
type runFunc func(ctx context.Context, cfg *config.Config) error

// validateFunc проверяет конфигурацию перед запуском команды.
type validateFunc func(cfg *config.Config) error

// newRootCmd создает корневую команду. Без подкоманды выполняется serve.
func newRootCmd() *cobra.Command {
	return newRootCmdWith(serve, migrate)
}

func newRootCmdWith(serveFn, migrateFn runFunc) *cobra.Command {
	fv := &flagValues{}

	root := &cobra.Command{
		Use:           "voyagehub-server",
		Short:         "REST API и websocket-сервер VoyageHub",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          commandRunner(fv, serveFn, (*config.Config).Validate),
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&fv.configPath, "config", "c", "", "Путь к YAML-файлу конфигурации")
	pf.IntVarP(&fv.port, "port", "p", config.DefaultPort, "Порт HTTP-сервера (env: SERVER_PORT)")
	pf.StringVar(&fv.certFile, "cert-file", "", "Путь к файлу TLS-сертификата (env: TLS_CERT_FILE)")
	pf.StringVar(&fv.keyFile, "key-file", "", "Путь к файлу TLS-ключа (env: TLS_KEY_FILE)")
	pf.StringVar(&fv.dbDriver, "db-driver", "", "Драйвер БД: sqlite или postgres (env: DB_DRIVER)")
	pf.StringVar(&fv.dbDSN, "database-dsn", "", "Строка подключения к БД (env: DATABASE_DSN)")
	pf.StringVar(&fv.storage, "storage", "", "Хранилище файлов: local, minio или s3 (env: STORAGE_BACKEND)")
	pf.StringVar(&fv.uploadDir, "upload-dir", "", "Каталог загрузок для local (env: UPLOAD_DIR)")
	pf.StringVar(&fv.logLevel, "log-level", "", "Уровень логирования: debug, info, warn, error (env: LOG_LEVEL)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Запустить сервер",
		Args:  cobra.NoArgs,
		RunE:  commandRunner(fv, serveFn, (*config.Config).Validate),
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции БД и выйти",
		Args:  cobra.NoArgs,
		RunE:  commandRunner(fv, migrateFn, (*config.Config).ValidateDatabase),
	})
	return root
}

func commandRunner(fv *flagValues, fn runFunc, validate validateFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, fv)
		if err != nil {
			return err
		}
		if err = validate(cfg); err != nil {
			return fmt.Errorf("неверная конфигурация: %w", err)
		}
		logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
		return fn(cmd.Context(), cfg)
	}
}

// loadConfig собирает конфигурацию: файл, окружение, затем явно заданные флаги.
func loadConfig(cmd *cobra.Command, fv *flagValues) (*config.Config, error) {
	cfg, err := config.Load(fv.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = fv.port
	}
	if flags.Changed("cert-file") {
		cfg.Server.CertFile = fv.certFile
	}
	if flags.Changed("key-file") {
		cfg.Server.KeyFile = fv.keyFile
	}
	if flags.Changed("db-driver") {
		cfg.Database.Driver = fv.dbDriver
	}
	if flags.Changed("database-dsn") {
		cfg.Database.DSN = fv.dbDSN
	}
	if flags.Changed("storage") {
		cfg.Storage.Backend = fv.storage
	}
	if flags.Changed("upload-dir") {
		cfg.Storage.UploadDir = fv.uploadDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = fv.logLevel
	}
	return cfg, nil
}
