// Package storage хранит загруженные файлы документов.
// Ключ объекта имеет вид "<uuid><ext>" и одинаков для всех бэкендов.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Поддерживаемые бэкенды хранилища.
const (
	BackendLocal = "local"
	BackendMinio = "minio"
	BackendS3    = "s3"
)

// FileStorage определяет интерфейс для взаимодействия с файловым хранилищем.
type FileStorage interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	// DownloadFile возвращает io.ReadCloser, который нужно закрыть после использования.
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error)
	// DeleteFile удаляет объект. Отсутствие объекта не считается ошибкой.
	DeleteFile(ctx context.Context, objectKey string) error
}

// Кастомные ошибки хранилища.
var (
	ErrObjectNotFound = errors.New("объект не найден в хранилище")
	ErrInvalidKey     = errors.New("недопустимый ключ объекта")
)

// ValidateKey проверяет, что ключ относительный и не выходит за пределы хранилища.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
