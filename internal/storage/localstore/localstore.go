// Пакет localstore — файловая реализация storage.Client для разработки
// и одиночных инсталляций.
//
// Раскладка на диске:
//
//	{root}/objects/{bucket}/{key}     — содержимое объекта
//	{root}/attrs/{bucket}/{key}.json  — описание объекта (storage.ObjectInfo)
//
// Запись содержимого: temp файл → запись + SHA-256 → fsync → atomic rename.
package localstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Store — объектное хранилище на локальной файловой системе.
type Store struct {
	root          string
	publicBaseURL string
	logger        *slog.Logger

	// mu сериализует проверку существования и публикацию объекта.
	mu sync.Mutex
}

// New создаёт Store. Проверяет и создаёт корневую директорию,
// если она не существует.
func New(root, publicBaseURL string, logger *slog.Logger) (*Store, error) {
	for _, dir := range []string{root, filepath.Join(root, "objects"), filepath.Join(root, "attrs")} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dir, err)
		}
	}

	return &Store{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger.With(slog.String("component", "localstore")),
	}, nil
}

// Root возвращает корневую директорию хранилища.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) objectPath(bucket, key string) string {
	return filepath.Join(s.root, "objects", bucket, filepath.FromSlash(key))
}

func (s *Store) attrPath(bucket, key string) string {
	return filepath.Join(s.root, "attrs", bucket, filepath.FromSlash(key)+attrSuffix)
}

func validateBucket(bucket string) error {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return fmt.Errorf("недопустимое имя бакета %q", bucket)
	}
	return nil
}

// Upload записывает данные из body на диск с подсчётом SHA-256 на лету.
func (s *Store) Upload(ctx context.Context, bucket, key string, body io.Reader, opts storage.UploadOptions) (*storage.ObjectInfo, error) {
	if err := validateBucket(bucket); err != nil {
		return nil, err
	}
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	fullPath := s.objectPath(bucket, key)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := f.Name()

	// Streaming запись с одновременным подсчётом SHA-256
	hasher := sha256.New()
	size, err := io.Copy(f, io.TeeReader(body, hasher))
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := ctx.Err(); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	info := &storage.ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Name:        storage.BaseName(key),
		Size:        size,
		ContentType: opts.ContentType,
		Checksum:    hex.EncodeToString(hasher.Sum(nil)),
		Metadata:    storage.CloneMetadata(opts.Metadata),
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !opts.Upsert {
		if _, err := os.Stat(fullPath); err == nil {
			os.Remove(tmpPath)
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, storage.ErrAlreadyExists)
		}
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	if err := writeAttr(s.attrPath(bucket, key), info); err != nil {
		// Объект без описания невидим для List — откатываем содержимое
		_ = removeIfExists(fullPath)
		return nil, err
	}

	s.logger.Debug("Объект записан",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int64("size", size),
	)

	return info, nil
}

// Download открывает объект для чтения.
func (s *Store) Download(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	if err := validateBucket(bucket); err != nil {
		return nil, nil, err
	}
	if err := storage.ValidateKey(key); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	info, err := readAttr(s.attrPath(bucket, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%s/%s: %w", bucket, key, storage.ErrNotFound)
		}
		return nil, nil, err
	}

	f, err := os.Open(s.objectPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%s/%s: %w", bucket, key, storage.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("ошибка открытия файла %s/%s: %w", bucket, key, err)
	}

	return f, info, nil
}

// List обходит описания объектов бакета и возвращает подходящие под prefix.
func (s *Store) List(ctx context.Context, bucket, prefix string, opts storage.ListOptions) ([]storage.ObjectInfo, error) {
	if err := validateBucket(bucket); err != nil {
		return nil, err
	}

	base := filepath.Join(s.root, "attrs", bucket)
	var items []storage.ObjectInfo

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, attrSuffix) {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), attrSuffix)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := readAttr(path)
		if err != nil {
			// Пропускаем повреждённые описания, логируем проблему
			s.logger.Warn("Пропущено невалидное описание объекта",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		items = append(items, *info)
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка обхода бакета %s: %w", bucket, err)
	}

	storage.SortNewestFirst(items)
	return storage.Paginate(items, opts), nil
}

// Remove удаляет объекты и их описания.
func (s *Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := storage.ValidateKey(key); err != nil {
			return err
		}
		if err := removeIfExists(s.attrPath(bucket, key)); err != nil {
			return err
		}
		if err := removeIfExists(s.objectPath(bucket, key)); err != nil {
			return err
		}
	}
	return nil
}

// PublicURL возвращает {publicBaseURL}/{bucket}/{key}.
func (s *Store) PublicURL(bucket, key string) string {
	return s.publicBaseURL + "/" + bucket + "/" + key
}

// Ping проверяет доступность корневой директории.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("директория данных недоступна: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не является директорией", s.root)
	}
	return nil
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ storage.Client = (*Store)(nil)
