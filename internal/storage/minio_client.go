package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient реализует FileStorage для MinIO.
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

// Убедимся, что MinioClient удовлетворяет интерфейсу FileStorage.
var _ FileStorage = (*MinioClient)(nil)

// MinioConfig содержит параметры для подключения к MinIO.
type MinioConfig struct {
	Endpoint        string // Адрес MinIO (например, "localhost:9000")
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

// NewMinioClient создает клиент MinIO и при необходимости создает бакет.
func NewMinioClient(ctx context.Context, cfg MinioConfig) (*MinioClient, error) {
	slog.Info("Инициализация клиента MinIO...", "endpoint", cfg.Endpoint)

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существования бакета '%s': %w", cfg.BucketName, err)
	}
	if !exists {
		slog.Info("Бакет не найден, попытка создания...", "bucket", cfg.BucketName)
		err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания бакета '%s': %w", cfg.BucketName, err)
		}
	}

	slog.Info("Клиент MinIO успешно инициализирован.", "bucket", cfg.BucketName)
	return &MinioClient{
		client:     minioClient,
		bucketName: cfg.BucketName,
	}, nil
}

// UploadFile загружает файл в MinIO.
func (c *MinioClient) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	if err := ValidateKey(objectKey); err != nil {
		return err
	}

	uploadInfo, err := c.client.PutObject(ctx, c.bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		slog.Error("[Minio] Ошибка загрузки файла", "key", objectKey, "error", err)
		return fmt.Errorf("ошибка загрузки файла в MinIO: %w", err)
	}

	slog.Debug("[Minio] Файл загружен", "key", objectKey, "size", uploadInfo.Size, "etag", uploadInfo.ETag)
	return nil
}

// DownloadFile скачивает файл из MinIO.
// GetObject ленивый, поэтому наличие объекта проверяется через Stat.
func (c *MinioClient) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if err := ValidateKey(objectKey); err != nil {
		return nil, err
	}

	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.mapError(objectKey, err)
	}
	if _, err = object.Stat(); err != nil {
		_ = object.Close()
		return nil, c.mapError(objectKey, err)
	}
	return object, nil
}

// DeleteFile удаляет объект из MinIO.
func (c *MinioClient) DeleteFile(ctx context.Context, objectKey string) error {
	if err := ValidateKey(objectKey); err != nil {
		return err
	}
	if err := c.client.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if errors.Is(c.mapError(objectKey, err), ErrObjectNotFound) {
			return nil
		}
		return fmt.Errorf("ошибка удаления файла из MinIO: %w", err)
	}
	return nil
}

func (c *MinioClient) mapError(objectKey string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		slog.Debug("[Minio] Файл не найден", "key", objectKey, "bucket", c.bucketName)
		return ErrObjectNotFound
	}
	return fmt.Errorf("ошибка получения файла из MinIO: %w", err)
}
