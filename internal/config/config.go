// Package config собирает настройки сервера: значения по умолчанию,
// необязательный YAML-файл, переменные окружения и флаги командной строки.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gRaffRO/VoyageHub-sub000/internal/repository"
	"github.com/gRaffRO/VoyageHub-sub000/internal/storage"
)

// Значения по умолчанию.
const (
	DefaultPort            = 3001
	DefaultDSN             = "data/voyagehub.db"
	DefaultUploadDir       = "uploads"
	DefaultTokenTTL        = 24 * time.Hour
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
)

// Config - полная конфигурация сервера.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	LogLevel string         `yaml:"log_level"`
}

// ServerConfig - параметры HTTP-сервера.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	CertFile        string        `yaml:"cert_file"`
	KeyFile         string        `yaml:"key_file"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig - параметры подключения к БД.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AuthConfig - параметры выдачи JWT.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// StorageConfig - хранилище файлов документов.
type StorageConfig struct {
	Backend   string      `yaml:"backend"`
	UploadDir string      `yaml:"upload_dir"`
	Minio     MinioConfig `yaml:"minio"`
	S3        S3Config    `yaml:"s3"`
}

// MinioConfig - параметры MinIO.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// S3Config - параметры S3-совместимого хранилища.
type S3Config struct {
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// Default возвращает конфигурацию по умолчанию: SQLite и локальный диск.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Driver: repository.DriverSQLite,
			DSN:    DefaultDSN,
		},
		Auth: AuthConfig{
			TokenTTL: DefaultTokenTTL,
		},
		Storage: StorageConfig{
			Backend:   storage.BackendLocal,
			UploadDir: DefaultUploadDir,
			Minio: MinioConfig{
				Endpoint: "localhost:9000",
				Bucket:   "voyagehub",
			},
			S3: S3Config{
				Region: "us-east-1",
				Bucket: "voyagehub",
			},
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load читает конфигурацию: значения по умолчанию, поверх них YAML-файл
// (если path не пуст), затем переменные окружения.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации %s: %w", path, err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv переопределяет поля значениями переменных окружения.
// lookup обычно os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}

	if v, ok := lookup("SERVER_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SERVER_PORT: %w", err))
		} else {
			c.Server.Port = port
		}
	}
	str("TLS_CERT_FILE", &c.Server.CertFile)
	str("TLS_KEY_FILE", &c.Server.KeyFile)
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	str("DB_DRIVER", &c.Database.Driver)
	str("DATABASE_DSN", &c.Database.DSN)

	str("JWT_SECRET", &c.Auth.JWTSecret)
	if v, ok := lookup("JWT_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("JWT_TTL: %w", err))
		} else {
			c.Auth.TokenTTL = ttl
		}
	}

	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("UPLOAD_DIR", &c.Storage.UploadDir)

	str("MINIO_ENDPOINT", &c.Storage.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Storage.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Storage.Minio.SecretKey)
	str("MINIO_BUCKET", &c.Storage.Minio.Bucket)
	str("MINIO_REGION", &c.Storage.Minio.Region)
	boolean("MINIO_USE_SSL", &c.Storage.Minio.UseSSL)

	str("S3_REGION", &c.Storage.S3.Region)
	str("S3_BUCKET", &c.Storage.S3.Bucket)
	str("S3_ENDPOINT", &c.Storage.S3.Endpoint)
	str("S3_ACCESS_KEY", &c.Storage.S3.AccessKey)
	str("S3_SECRET_KEY", &c.Storage.S3.SecretKey)
	boolean("S3_USE_PATH_STYLE", &c.Storage.S3.UsePathStyle)

	str("LOG_LEVEL", &c.LogLevel)

	return errors.Join(errs...)
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("недопустимый порт: %d", c.Server.Port))
	}
	if (c.Server.CertFile == "") != (c.Server.KeyFile == "") {
		errs = append(errs, errors.New("для TLS нужны и сертификат, и ключ"))
	}
	if err := c.ValidateDatabase(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("не задан секрет JWT (JWT_SECRET)"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("недопустимое время жизни токена: %s", c.Auth.TokenTTL))
	}
	switch c.Storage.Backend {
	case storage.BackendLocal:
		if c.Storage.UploadDir == "" {
			errs = append(errs, errors.New("не задан каталог загрузок"))
		}
	case storage.BackendMinio:
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.Bucket == "" {
			errs = append(errs, errors.New("для MinIO нужны endpoint и bucket"))
		}
	case storage.BackendS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("для S3 нужен bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("неподдерживаемое хранилище: %q", c.Storage.Backend))
	}
	return errors.Join(errs...)
}

// ValidateDatabase проверяет только параметры БД. Достаточно для миграций.
func (c *Config) ValidateDatabase() error {
	var errs []error
	switch c.Database.Driver {
	case repository.DriverSQLite, repository.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("неподдерживаемый драйвер БД: %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("не задан DSN базы данных"))
	}
	return errors.Join(errs...)
}

// TLSEnabled сообщает, заданы ли сертификат и ключ.
func (c *Config) TLSEnabled() bool {
	return c.Server.CertFile != "" && c.Server.KeyFile != ""
}

// Addr возвращает адрес для net/http.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
