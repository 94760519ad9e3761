package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalStorage хранит файлы в каталоге на диске.
type LocalStorage struct {
	root string
}

// Убедимся, что LocalStorage удовлетворяет интерфейсу FileStorage.
var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage создает хранилище в каталоге dir, создавая его при необходимости.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка определения пути каталога загрузок: %w", err)
	}
	if err = os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога загрузок: %w", err)
	}
	slog.Info("[LocalStorage] Каталог загрузок готов", "dir", abs)
	return &LocalStorage{root: abs}, nil
}

func (s *LocalStorage) path(objectKey string) (string, error) {
	if err := ValidateKey(objectKey); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(objectKey)), nil
}

// UploadFile записывает файл через временный файл и переименование,
// чтобы читатель не увидел частично записанный объект.
func (s *LocalStorage) UploadFile(
	_ context.Context,
	objectKey string,
	reader io.Reader,
	_ int64,
	_ string,
) error {
	target, err := s.path(objectKey)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("ошибка создания каталога для файла: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	written, err := io.Copy(tmp, reader)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("ошибка сохранения файла: %w", err)
	}

	slog.Debug("[LocalStorage] Файл сохранен", "key", objectKey, "size", written)
	return nil
}

// DownloadFile открывает файл на чтение.
func (s *LocalStorage) DownloadFile(_ context.Context, objectKey string) (io.ReadCloser, error) {
	target, err := s.path(objectKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	return f, nil
}

// DeleteFile удаляет файл.
func (s *LocalStorage) DeleteFile(_ context.Context, objectKey string) error {
	target, err := s.path(objectKey)
	if err != nil {
		return err
	}
	if err = os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	return nil
}
