// Пакет memstore — in-memory реализация storage.Client.
// Используется в тестах и в режиме VS_STORAGE_BACKEND=memory.
// Данные не персистентны: при рестарте всё содержимое теряется.
package memstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// object — объект в памяти: содержимое и описание.
type object struct {
	data []byte
	info storage.ObjectInfo
}

// Store — потокобезопасное in-memory хранилище объектов.
type Store struct {
	mu            sync.RWMutex
	buckets       map[string]map[string]*object // bucket → key → object
	publicBaseURL string
	now           func() time.Time
}

// Option — функциональная опция Store.
type Option func(*Store)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New создаёт пустое хранилище. publicBaseURL — префикс публичных URL.
func New(publicBaseURL string, opts ...Option) *Store {
	s := &Store{
		buckets:       make(map[string]map[string]*object),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload сохраняет копию данных из body.
func (s *Store) Upload(ctx context.Context, bucket, key string, body io.Reader, opts storage.UploadOptions) (*storage.ObjectInfo, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения данных: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	info := storage.ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Name:        storage.BaseName(key),
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		Checksum:    hex.EncodeToString(sum[:]),
		Metadata:    storage.CloneMetadata(opts.Metadata),
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		objects = make(map[string]*object)
		s.buckets[bucket] = objects
	}
	if _, exists := objects[key]; exists && !opts.Upsert {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, storage.ErrAlreadyExists)
	}
	objects[key] = &object{data: data, info: info}

	result := info
	result.Metadata = storage.CloneMetadata(info.Metadata)
	return &result, nil
}

// Download возвращает reader по копии содержимого.
func (s *Store) Download(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, nil, fmt.Errorf("%s/%s: %w", bucket, key, storage.ErrNotFound)
	}

	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	info := obj.info
	info.Metadata = storage.CloneMetadata(obj.info.Metadata)

	return io.NopCloser(bytes.NewReader(data)), &info, nil
}

// List возвращает объекты бакета с указанным префиксом, новые первые.
func (s *Store) List(ctx context.Context, bucket, prefix string, opts storage.ListOptions) ([]storage.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var items []storage.ObjectInfo
	for key, obj := range s.buckets[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		info := obj.info
		info.Metadata = storage.CloneMetadata(obj.info.Metadata)
		items = append(items, info)
	}
	s.mu.RUnlock()

	storage.SortNewestFirst(items)
	return storage.Paginate(items, opts), nil
}

// Remove удаляет объекты; отсутствующие ключи игнорируются.
func (s *Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.buckets[bucket], key)
	}
	return nil
}

// PublicURL возвращает {publicBaseURL}/{bucket}/{key}.
func (s *Store) PublicURL(bucket, key string) string {
	return s.publicBaseURL + "/" + bucket + "/" + key
}

// Ping всегда успешен для in-memory хранилища.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Count возвращает количество объектов в бакете.
func (s *Store) Count(bucket string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets[bucket])
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ storage.Client = (*Store)(nil)
