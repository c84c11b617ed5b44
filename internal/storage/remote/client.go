// Пакет remote — HTTP-клиент управляемого объектного хранилища
// (REST API, совместимый с Supabase Storage).
// Поддерживает TLS с кастомным CA (VS_REMOTE_CA_CERT).
// Операции: upload, download, list (рекурсивный обход папок), remove, ping.
package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

const (
	// listPageSize — размер страницы при обходе папок.
	listPageSize = 1000
	// defaultListRequestLimit — максимум запросов листинга на один вызов List.
	defaultListRequestLimit = 200
)

// Config — параметры подключения к хранилищу.
type Config struct {
	// BaseURL — корневой URL проекта (например, https://xyz.supabase.co)
	BaseURL string
	// ServiceKey — service-role ключ, передаётся как Bearer и apikey
	ServiceKey string
	// CACertPath — путь к CA-сертификату (пустая строка — системный пул)
	CACertPath string
	// Timeout — таймаут HTTP-запроса
	Timeout time.Duration
	// HealthPath — путь health endpoint для Ping
	HealthPath string
	// ListRequestLimit — максимум запросов листинга на один вызов List
	// (0 = defaultListRequestLimit). При исчерпании обход прекращается.
	ListRequestLimit int
}

// Client — HTTP-клиент объектного хранилища.
type Client struct {
	baseURL    string
	serviceKey string
	healthPath string
	listBudget int
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент хранилища.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("не задан URL хранилища")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("некорректный URL хранилища: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	if cfg.CACertPath != "" {
		tlsConfig, err := buildTLSConfig(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата хранилища: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат хранилища добавлен в пул доверия",
			slog.String("ca_cert", cfg.CACertPath),
		)
	}

	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/storage/v1/status"
	}

	listBudget := cfg.ListRequestLimit
	if listBudget <= 0 {
		listBudget = defaultListRequestLimit
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		healthPath: healthPath,
		listBudget: listBudget,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "remote_storage")),
	}, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// BaseURL возвращает корневой URL хранилища.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthURL возвращает полный URL health endpoint.
func (c *Client) HealthURL() string {
	return c.baseURL + c.healthPath
}

// objectURL строит URL объекта: {base}/storage/v1/object/{bucket}/{key}.
func (c *Client) objectURL(kind, bucket, key string) string {
	parts := []string{c.baseURL, "storage/v1/object"}
	if kind != "" {
		parts = append(parts, kind)
	}
	parts = append(parts, url.PathEscape(bucket))
	if key != "" {
		parts = append(parts, escapeKey(key))
	}
	return strings.Join(parts, "/")
}

// escapeKey экранирует каждый сегмент ключа, сохраняя разделители "/".
func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s %s: %w", method, rawURL, err)
	}
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
		req.Header.Set("apikey", c.serviceKey)
	}
	return req, nil
}

// countingReader считает байты и SHA-256 проходящего потока.
type countingReader struct {
	r      io.Reader
	n      int64
	hasher hash.Hash
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	cr.hasher.Write(p[:n])
	return n, err
}

// Upload отправляет объект: POST /storage/v1/object/{bucket}/{key}.
func (c *Client) Upload(ctx context.Context, bucket, key string, body io.Reader, opts storage.UploadOptions) (*storage.ObjectInfo, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	counter := &countingReader{r: body, hasher: sha256.New()}
	req, err := c.newRequest(ctx, http.MethodPost, c.objectURL("", bucket, key), counter)
	if err != nil {
		return nil, err
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", strconv.FormatBool(opts.Upsert))
	if len(opts.Metadata) > 0 {
		encoded, err := encodeMetadata(opts.Metadata)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-metadata", encoded)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос upload %s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, c.responseError(resp, bucket, key)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return &storage.ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Name:        storage.BaseName(key),
		Size:        counter.n,
		ContentType: contentType,
		Checksum:    hex.EncodeToString(counter.hasher.Sum(nil)),
		Metadata:    storage.CloneMetadata(opts.Metadata),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Download запрашивает объект: GET /storage/v1/object/{bucket}/{key}.
func (c *Client) Download(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.objectURL("", bucket, key), nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("запрос download %s/%s: %w", bucket, key, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, nil, c.responseError(resp, bucket, key)
	}

	info := &storage.ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Name:        storage.BaseName(key),
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
		Checksum:    strings.Trim(resp.Header.Get("ETag"), `"`),
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		info.CreatedAt = lm.UTC()
	}
	if raw := resp.Header.Get("x-metadata"); raw != "" {
		if meta, err := decodeMetadata(raw); err == nil {
			info.Metadata = meta
		}
	} else {
		// Хранилище не возвращает пользовательские метаданные вместе с содержимым
		meta, err := c.userMetadata(ctx, bucket, key)
		if err != nil {
			c.logger.Warn("Не удалось получить метаданные объекта",
				slog.String("bucket", bucket),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		info.Metadata = meta
	}

	return resp.Body, info, nil
}

// objectInfo — тело ответа GET /storage/v1/object/info/{bucket}/{key}.
type objectInfo struct {
	UserMetadata map[string]any `json:"user_metadata"`
}

// userMetadata запрашивает пользовательские метаданные объекта.
func (c *Client) userMetadata(ctx context.Context, bucket, key string) (map[string]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.objectURL("info", bucket, key), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос info %s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp, bucket, key)
	}

	var body objectInfo
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("декодирование info %s/%s: %w", bucket, key, err)
	}
	if len(body.UserMetadata) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(body.UserMetadata))
	for k, v := range body.UserMetadata {
		if s, ok := v.(string); ok {
			meta[k] = s
		}
	}
	return meta, nil
}

// listRequest — тело POST /storage/v1/object/list/{bucket}.
type listRequest struct {
	Prefix string     `json:"prefix"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	Search string     `json:"search,omitempty"`
	SortBy listSortBy `json:"sortBy"`
}

type listSortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// listEntry — элемент ответа листинга. Папки приходят с пустым id.
type listEntry struct {
	Name         string            `json:"name"`
	ID           *string           `json:"id"`
	CreatedAt    *time.Time        `json:"created_at"`
	UpdatedAt    *time.Time        `json:"updated_at"`
	Metadata     map[string]any    `json:"metadata"`
	UserMetadata map[string]string `json:"user_metadata"`
}

// List обходит папки бакета под prefix и возвращает объекты, новые первые.
// Хранилище листит только один уровень папки, поэтому подпапки
// обходятся рекурсивно; последняя часть prefix используется как search.
//
// Папка отдаётся отсортированной по created_at desc, поэтому из каждой
// папки достаточно первых Offset+Limit объектов. Число запросов на вызов
// ограничено ListRequestLimit: при исчерпании возвращается то, что
// собрано к этому моменту.
func (c *Client) List(ctx context.Context, bucket, prefix string, opts storage.ListOptions) ([]storage.ObjectInfo, error) {
	folder, search := "", prefix
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		folder, search = prefix[:i], prefix[i+1:]
	}

	w := &walker{
		c:      c,
		bucket: bucket,
		need:   opts.Offset + opts.NormalizeLimit(),
		budget: c.listBudget,
	}
	if err := w.walk(ctx, folder, search); err != nil {
		return nil, err
	}
	if w.truncated {
		c.logger.Warn("Листинг усечён: исчерпан лимит запросов",
			slog.String("bucket", bucket),
			slog.String("prefix", prefix),
			slog.Int("requests", c.listBudget),
		)
	}

	storage.SortNewestFirst(w.items)
	return storage.Paginate(w.items, opts), nil
}

// walker — состояние одного обхода папок.
type walker struct {
	c         *Client
	bucket    string
	need      int
	budget    int
	truncated bool
	items     []storage.ObjectInfo
}

func (w *walker) walk(ctx context.Context, folder, search string) error {
	taken := 0
	for offset := 0; taken < w.need; offset += listPageSize {
		if w.budget == 0 {
			w.truncated = true
			return nil
		}
		w.budget--

		entries, err := w.c.listPage(ctx, w.bucket, folder, search, offset)
		if err != nil {
			return err
		}

		for _, e := range entries {
			key := e.Name
			if folder != "" {
				key = folder + "/" + e.Name
			}
			if e.ID == nil {
				if err := w.walk(ctx, key, ""); err != nil {
					return err
				}
				continue
			}
			if taken < w.need {
				w.items = append(w.items, entryToInfo(w.bucket, key, e))
				taken++
			}
		}
		w.compact()

		if len(entries) < listPageSize {
			return nil
		}
	}
	return nil
}

// compact оставляет need самых новых объектов, когда собрано вдвое больше.
func (w *walker) compact() {
	if len(w.items) <= 2*w.need {
		return
	}
	storage.SortNewestFirst(w.items)
	w.items = w.items[:w.need]
}

func (c *Client) listPage(ctx context.Context, bucket, folder, search string, offset int) ([]listEntry, error) {
	payload, err := json.Marshal(listRequest{
		Prefix: folder,
		Limit:  listPageSize,
		Offset: offset,
		Search: search,
		SortBy: listSortBy{Column: "created_at", Order: "desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса list: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.objectURL("list", bucket, ""), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос list %s: %w", bucket, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp, bucket, folder)
	}

	var entries []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("декодирование list %s: %w", bucket, err)
	}
	return entries, nil
}

// entryToInfo преобразует элемент листинга в storage.ObjectInfo.
func entryToInfo(bucket, key string, e listEntry) storage.ObjectInfo {
	info := storage.ObjectInfo{
		Bucket:   bucket,
		Key:      key,
		Name:     e.Name,
		Metadata: storage.CloneMetadata(e.UserMetadata),
	}
	if e.CreatedAt != nil {
		info.CreatedAt = e.CreatedAt.UTC()
	} else if e.UpdatedAt != nil {
		info.CreatedAt = e.UpdatedAt.UTC()
	}
	if size, ok := e.Metadata["size"].(float64); ok {
		info.Size = int64(size)
	}
	if mime, ok := e.Metadata["mimetype"].(string); ok {
		info.ContentType = mime
	}
	if etag, ok := e.Metadata["eTag"].(string); ok {
		info.Checksum = strings.Trim(etag, `"`)
	}
	return info
}

// Remove удаляет объекты: DELETE /storage/v1/object/{bucket} {"prefixes": [...]}.
func (c *Client) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string][]string{"prefixes": keys})
	if err != nil {
		return fmt.Errorf("сериализация запроса remove: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodDelete, c.objectURL("", bucket, ""), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос remove %s: %w", bucket, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return c.responseError(resp, bucket, strings.Join(keys, ","))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// PublicURL возвращает {base}/storage/v1/object/public/{bucket}/{key}.
func (c *Client) PublicURL(bucket, key string) string {
	return c.objectURL("public", bucket, key)
}

// Ping запрашивает health endpoint хранилища.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.HealthURL(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос health %s: %w", c.HealthURL(), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("хранилище вернуло статус %d", resp.StatusCode)
	}
	return nil
}

// errorBody — тело ошибки хранилища.
// statusCode приходит строкой ("404", "409").
type errorBody struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// StatusError — ошибка HTTP-ответа хранилища.
type StatusError struct {
	StatusCode int
	Body       string
	cause      error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("хранилище вернуло статус %d: %s", e.StatusCode, e.Body)
}

// Unwrap позволяет errors.Is распознать ErrNotFound / ErrAlreadyExists.
func (e *StatusError) Unwrap() error {
	return e.cause
}

// responseError преобразует неуспешный ответ в ошибку.
func (c *Client) responseError(resp *http.Response, bucket, key string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	code := resp.StatusCode
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.StatusCode != "" {
		if n, err := strconv.Atoi(body.StatusCode); err == nil {
			code = n
		}
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	switch code {
	case http.StatusNotFound:
		statusErr.cause = storage.ErrNotFound
	case http.StatusConflict:
		statusErr.cause = storage.ErrAlreadyExists
	}

	c.logger.Debug("Неуспешный ответ хранилища",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("status", resp.StatusCode),
	)
	return statusErr
}

// encodeMetadata кодирует метаданные в base64(JSON) для заголовка x-metadata.
func encodeMetadata(meta map[string]string) (string, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("сериализация метаданных: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// decodeMetadata декодирует заголовок x-metadata.
func decodeMetadata(raw string) (map[string]string, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("декодирование base64 метаданных: %w", err)
	}
	var meta map[string]string
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("десериализация метаданных: %w", err)
	}
	return meta, nil
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ storage.Client = (*Client)(nil)
