// Пакет storage — абстракция над объектным хранилищем с бакетами.
// Все адаптеры бакетов работают только через интерфейс Client;
// конкретный backend (remote, localstore, memstore) выбирается при старте.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"
	"time"
)

// Ошибки backend-а, общие для всех реализаций.
var (
	// ErrNotFound — объект не найден.
	ErrNotFound = errors.New("объект не найден")
	// ErrAlreadyExists — объект с таким ключом уже существует (upload без upsert).
	ErrAlreadyExists = errors.New("объект уже существует")
)

// DefaultListLimit — лимит List, если ListOptions.Limit не задан.
const DefaultListLimit = 100

// UploadOptions — параметры записи объекта.
type UploadOptions struct {
	// ContentType — MIME-тип содержимого
	ContentType string
	// Metadata — пользовательские метаданные (userId, category, originalName ...)
	Metadata map[string]string
	// Upsert — разрешить перезапись существующего ключа
	Upsert bool
}

// ListOptions — параметры листинга. Результат отсортирован: новые первые.
type ListOptions struct {
	// Limit — максимальное количество объектов (0 = DefaultListLimit)
	Limit int
	// Offset — смещение от начала списка
	Offset int
}

// ObjectInfo — описание объекта в бакете.
type ObjectInfo struct {
	Bucket      string            `json:"bucket"`
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	Size        int64             `json:"size"`
	ContentType string            `json:"content_type"`
	Checksum    string            `json:"checksum,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Client — операции объектного хранилища, необходимые адаптерам бакетов.
// Реализации обязаны быть безопасными для конкурентного использования.
type Client interface {
	// Upload записывает объект. Без opts.Upsert существующий ключ даёт ErrAlreadyExists.
	Upload(ctx context.Context, bucket, key string, body io.Reader, opts UploadOptions) (*ObjectInfo, error)
	// Download открывает объект на чтение. Вызывающий код обязан закрыть ReadCloser.
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, *ObjectInfo, error)
	// List возвращает объекты, ключ которых начинается с prefix (рекурсивно).
	List(ctx context.Context, bucket, prefix string, opts ListOptions) ([]ObjectInfo, error)
	// Remove удаляет объекты. Отсутствующие ключи игнорируются.
	Remove(ctx context.Context, bucket string, keys ...string) error
	// PublicURL возвращает публично разрешимый URL объекта.
	PublicURL(bucket, key string) string
	// Ping проверяет доступность backend-а.
	Ping(ctx context.Context) error
}

// NormalizeLimit применяет значение по умолчанию к лимиту листинга.
func (o ListOptions) NormalizeLimit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

// Paginate применяет offset/limit к уже отсортированному срезу.
func Paginate(items []ObjectInfo, opts ListOptions) []ObjectInfo {
	if opts.Offset >= len(items) {
		return []ObjectInfo{}
	}
	end := len(items)
	if limit := opts.NormalizeLimit(); opts.Offset+limit < end {
		end = opts.Offset + limit
	}
	return items[opts.Offset:end]
}

// ValidateKey проверяет ключ объекта: непустой, без ведущего "/" и без "..".
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("пустой ключ объекта")
	}
	if strings.HasPrefix(key, "/") {
		return errors.New("ключ объекта не может начинаться с /")
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return errors.New("ключ объекта содержит недопустимый сегмент")
		}
	}
	return nil
}

// BaseName возвращает последний сегмент ключа.
func BaseName(key string) string {
	return path.Base(key)
}

// CloneMetadata возвращает копию карты метаданных (nil → nil).
func CloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SortNewestFirst сортирует объекты по времени создания (новые первые).
// При равном времени порядок определяется ключом по убыванию: ключи
// адаптеров содержат timestamp и сортируются лексически.
func SortNewestFirst(items []ObjectInfo) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].Key > items[j].Key
	})
}
