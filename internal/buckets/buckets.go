// Пакет buckets — адаптеры одиннадцати семантических бакетов хранилища.
//
// Каждый адаптер связывает доменную запись или файл с одним бакетом:
// строит ключ (keys.go), прикладывает метаданные (владелец, классификация,
// исходное имя) и вызывает storage.Client. Ошибки backend-а оборачиваются
// в *OpError с префиксом операции ("Email upload failed: ...").
// Адаптеры не хранят состояния между вызовами.
package buckets

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Имена бакетов.
const (
	BucketEmails      = "emails"
	BucketAttachments = "email-attachments"
	BucketProfiles    = "user-profiles"
	BucketDocuments   = "documents"
	BucketLogs        = "logs"
	BucketProducts    = "products"
	BucketChatExports = "chat-exports"
	BucketDrafts      = "drafts"
	BucketSettings    = "settings"
	BucketBackups     = "backups"
	BucketLegal       = "terms-policies"
)

// AllBuckets — фиксированный список бакетов для статистики.
var AllBuckets = []string{
	BucketEmails,
	BucketAttachments,
	BucketProfiles,
	BucketDocuments,
	BucketLogs,
	BucketProducts,
	BucketChatExports,
	BucketDrafts,
	BucketSettings,
	BucketBackups,
	BucketLegal,
}

// publicBuckets — бакеты пользовательского контента, доступные по публичному URL.
// Письма, логи, черновики, настройки и бэкапы отдаются только через API.
var publicBuckets = map[string]bool{
	BucketAttachments: true,
	BucketProfiles:    true,
	BucketDocuments:   true,
	BucketProducts:    true,
	BucketChatExports: true,
	BucketLegal:       true,
}

// IsPublic сообщает, раздаётся ли бакет по публичному URL.
func IsPublic(bucket string) bool {
	return publicBuckets[bucket]
}

// scanLimit — максимум объектов, просматриваемых за один листинг
// при фильтрации на стороне адаптера и подсчёте статистики.
const scanLimit = 1000

// IsKnownBucket сообщает, входит ли имя в AllBuckets.
func IsKnownBucket(name string) bool {
	for _, b := range AllBuckets {
		if b == name {
			return true
		}
	}
	return false
}

// ErrInvalidArgument — некорректный аргумент операции (пустой владелец,
// неизвестный тип изображения и т.п.). Возвращается до обращения к backend-у.
var ErrInvalidArgument = errors.New("invalid argument")

// OpError — ошибка backend-а с префиксом операции адаптера.
type OpError struct {
	// Op — операция, например "Email upload"
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Prometheus-метрики операций адаптеров.
var bucketOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vs_bucket_operations_total",
	Help: "Количество операций адаптеров бакетов.",
}, []string{"bucket", "operation", "result"})

// File — загружаемый бинарный файл.
type File struct {
	// Name — исходное имя файла у клиента
	Name string
	// ContentType — MIME-тип (если пустой, определяется по расширению/содержимому)
	ContentType string
	// Size — размер в байтах, если известен (-1 или 0 — неизвестен)
	Size int64
	// Body — содержимое
	Body io.Reader
}

// Result — результат записи объекта.
type Result struct {
	Bucket string `json:"bucket"`
	// Key — ключ объекта в бакете
	Key string `json:"filename"`
	// URL — публичный URL объекта
	URL string `json:"url"`
}

// Object — объект листинга с публичным URL.
type Object struct {
	storage.ObjectInfo
	URL string `json:"url"`
}

// core — общие зависимости адаптеров.
type core struct {
	client storage.Client
	logger *slog.Logger
	now    func() time.Time
}

// adapter — базовая часть адаптера одного бакета.
type adapter struct {
	*core
	bucket string
	// label — префикс операций в ошибках ("Email", "Document" ...)
	label string
}

// Store — точка доступа ко всем адаптерам.
type Store struct {
	core *core

	Emails      *Emails
	Attachments *Attachments
	Profiles    *Profiles
	Documents   *Documents
	Logs        *Logs
	Products    *Products
	ChatExports *ChatExports
	Drafts      *Drafts
	Settings    *Settings
	Backups     *Backups
	Legal       *Legal
}

// Option — функциональная опция Store.
type Option func(*core)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

// New создаёт Store поверх клиента хранилища.
func New(client storage.Client, logger *slog.Logger, opts ...Option) *Store {
	c := &core{
		client: client,
		logger: logger.With(slog.String("component", "buckets")),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	mk := func(bucket, label string) adapter {
		return adapter{core: c, bucket: bucket, label: label}
	}

	return &Store{
		core:        c,
		Emails:      &Emails{mk(BucketEmails, "Email")},
		Attachments: &Attachments{mk(BucketAttachments, "Attachment")},
		Profiles:    &Profiles{mk(BucketProfiles, "Profile")},
		Documents:   &Documents{mk(BucketDocuments, "Document")},
		Logs:        &Logs{mk(BucketLogs, "Log")},
		Products:    &Products{mk(BucketProducts, "Product asset")},
		ChatExports: &ChatExports{mk(BucketChatExports, "Chat export")},
		Drafts:      &Drafts{mk(BucketDrafts, "Draft")},
		Settings:    &Settings{mk(BucketSettings, "Settings")},
		Backups:     &Backups{mk(BucketBackups, "Backup")},
		Legal:       &Legal{mk(BucketLegal, "Legal document")},
	}
}

// Client возвращает клиент хранилища.
func (s *Store) Client() storage.Client {
	return s.core.client
}

// Download открывает произвольный объект любого известного бакета.
func (s *Store) Download(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	if !IsKnownBucket(bucket) {
		return nil, nil, fmt.Errorf("%w: unknown bucket %q", ErrInvalidArgument, bucket)
	}
	a := adapter{core: s.core, bucket: bucket, label: "Object"}
	return a.open(ctx, "download", key)
}

// fail оборачивает ошибку backend-а и учитывает её в метриках.
func (a *adapter) fail(op string, err error) error {
	bucketOperationsTotal.WithLabelValues(a.bucket, op, "error").Inc()
	a.logger.Warn("Ошибка операции бакета",
		slog.String("bucket", a.bucket),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return &OpError{Op: a.label + " " + op, Err: err}
}

func (a *adapter) ok(op string) {
	bucketOperationsTotal.WithLabelValues(a.bucket, op, "success").Inc()
}

// timestamp — ключевая метка текущего момента.
func (a *adapter) timestamp() string {
	return Timestamp(a.now())
}

// put записывает объект и возвращает ключ и публичный URL.
func (a *adapter) put(ctx context.Context, op, key string, body io.Reader, contentType string, meta map[string]string, upsert bool) (*Result, error) {
	_, err := a.client.Upload(ctx, a.bucket, key, body, storage.UploadOptions{
		ContentType: contentType,
		Metadata:    meta,
		Upsert:      upsert,
	})
	if err != nil {
		return nil, a.fail(op, err)
	}
	a.ok(op)

	a.logger.Debug("Объект записан",
		slog.String("bucket", a.bucket),
		slog.String("key", key),
	)

	return &Result{
		Bucket: a.bucket,
		Key:    key,
		URL:    a.client.PublicURL(a.bucket, key),
	}, nil
}

// putJSON сериализует v и записывает как application/json.
func (a *adapter) putJSON(ctx context.Context, op, key string, v any, meta map[string]string, upsert bool) (*Result, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", ErrInvalidArgument, a.bucket, err)
	}
	return a.put(ctx, op, key, bytes.NewReader(data), "application/json", meta, upsert)
}

// putFile записывает бинарный файл, определяя MIME-тип при необходимости.
func (a *adapter) putFile(ctx context.Context, op, key string, f File, meta map[string]string) (*Result, error) {
	if f.Body == nil {
		return nil, fmt.Errorf("%w: empty file body", ErrInvalidArgument)
	}
	body, contentType := detectContentType(f)
	return a.put(ctx, op, key, body, contentType, meta, false)
}

// list возвращает объекты под prefix (новые первые) с публичными URL.
func (a *adapter) list(ctx context.Context, op, prefix string, page storage.ListOptions) ([]Object, error) {
	items, err := a.client.List(ctx, a.bucket, prefix, page)
	if err != nil {
		return nil, a.fail(op, err)
	}
	a.ok(op)

	out := make([]Object, 0, len(items))
	for _, it := range items {
		out = append(out, Object{ObjectInfo: it, URL: a.client.PublicURL(a.bucket, it.Key)})
	}
	return out, nil
}

// open открывает объект на чтение.
func (a *adapter) open(ctx context.Context, op, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	rc, info, err := a.client.Download(ctx, a.bucket, key)
	if err != nil {
		return nil, nil, a.fail(op, err)
	}
	a.ok(op)
	return rc, info, nil
}

// getJSON скачивает объект и декодирует JSON в dest.
func (a *adapter) getJSON(ctx context.Context, op, key string, dest any) error {
	rc, _, err := a.open(ctx, op, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(dest); err != nil {
		return &OpError{Op: a.label + " " + op, Err: fmt.Errorf("decode %s: %w", key, err)}
	}
	return nil
}

// latestJSON находит самый новый объект под prefix и декодирует его в dest.
// Возвращает ключ найденного объекта; пустой префикс даёт storage.ErrNotFound.
func (a *adapter) latestJSON(ctx context.Context, op, prefix string, dest any) (string, error) {
	items, err := a.client.List(ctx, a.bucket, prefix, storage.ListOptions{Limit: 1})
	if err != nil {
		return "", a.fail(op, err)
	}
	if len(items) == 0 {
		return "", &OpError{Op: a.label + " " + op, Err: fmt.Errorf("%s/%s*: %w", a.bucket, prefix, storage.ErrNotFound)}
	}
	key := items[0].Key
	return key, a.getJSON(ctx, op, key, dest)
}

// detectContentType возвращает тело и MIME-тип файла: заданный явно,
// по расширению или по первым 512 байтам содержимого.
func detectContentType(f File) (io.Reader, string) {
	if f.ContentType != "" {
		return f.Body, f.ContentType
	}
	if ext := Extension(f.Name); ext != "" {
		if ct := mime.TypeByExtension("." + ext); ct != "" {
			return f.Body, ct
		}
	}
	br := bufio.NewReaderSize(f.Body, 512)
	head, _ := br.Peek(512)
	return br, http.DetectContentType(head)
}

// formatTime — представление времени в метаданных (ISO-8601, UTC, миллисекунды).
func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
