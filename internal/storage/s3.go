package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config содержит параметры подключения к S3-совместимому хранилищу.
type S3Config struct {
	Region          string
	Bucket          string
	BaseEndpoint    string // пусто для AWS
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// s3API - используемая часть клиента S3.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Шов для подмены загрузки конфигурации AWS в тестах.
var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3Storage реализует FileStorage поверх aws-sdk-go-v2.
type S3Storage struct {
	client s3API
	bucket string
}

// Убедимся, что S3Storage удовлетворяет интерфейсу FileStorage.
var _ FileStorage = (*S3Storage)(nil)

// NewS3Storage создает клиент S3. Статические ключи используются, если заданы,
// иначе действует стандартная цепочка провайдеров AWS.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	slog.Info("Клиент S3 инициализирован.", "bucket", cfg.Bucket, "region", cfg.Region)
	return newS3StorageWithClient(client, cfg.Bucket), nil
}

func newS3StorageWithClient(client s3API, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket}
}

// UploadFile загружает объект.
func (s *S3Storage) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	if err := ValidateKey(objectKey); err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   reader,
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		slog.Error("[S3] Ошибка загрузки файла", "key", objectKey, "error", err)
		return fmt.Errorf("ошибка загрузки файла в S3: %w", err)
	}
	return nil
}

// DownloadFile скачивает объект.
func (s *S3Storage) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if err := ValidateKey(objectKey); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла из S3: %w", err)
	}
	return out.Body, nil
}

// DeleteFile удаляет объект. S3 не сообщает об отсутствии объекта при удалении.
func (s *S3Storage) DeleteFile(ctx context.Context, objectKey string) error {
	if err := ValidateKey(objectKey); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления файла из S3: %w", err)
	}
	return nil
}
