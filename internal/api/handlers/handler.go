// handler.go — основной обработчик API Bucket Gateway.
// Переводит HTTP-запросы в вызовы адаптеров бакетов и ошибки домена в коды ответа.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/goartstore/bucket-gateway/internal/api/errors"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/api/middleware"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/buckets"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/service"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// maxJSONBody — лимит JSON-тела запроса (записи логов, настройки, экспорты).
const maxJSONBody = 10 << 20

// APIHandler — основной обработчик API Bucket Gateway.
type APIHandler struct {
	store         *buckets.Store
	stats         *service.StatsService
	authEnabled   bool
	maxUploadSize int64
	logger        *slog.Logger
}

// Options — параметры APIHandler.
type Options struct {
	// AuthEnabled — владелец данных берётся из JWT sub;
	// иначе из параметра user_id
	AuthEnabled bool
	// MaxUploadSize — лимит multipart-загрузки в байтах
	MaxUploadSize int64
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(store *buckets.Store, stats *service.StatsService, opts Options, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		store:         store,
		stats:         stats,
		authEnabled:   opts.AuthEnabled,
		maxUploadSize: opts.MaxUploadSize,
		logger:        logger.With(slog.String("component", "api_handler")),
	}
}

// listResponse — ответ листинга.
type listResponse struct {
	Items []buckets.Object `json:"items"`
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeList записывает листинг; nil превращается в пустой массив.
func writeList(w http.ResponseWriter, items []buckets.Object) {
	if items == nil {
		items = []buckets.Object{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items})
}

// writeDomainError переводит ошибку адаптера в HTTP-ответ.
// Сообщения ошибок бакетов ("Email upload failed: ...") передаются клиенту как есть.
func (h *APIHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var opErr *buckets.OpError
	switch {
	case errors.Is(err, buckets.ErrFileTypeNotAllowed):
		apierrors.UnsupportedFileType(w, err.Error())
	case errors.Is(err, buckets.ErrInvalidArgument), errors.Is(err, buckets.ErrUnknownContextType):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, storage.ErrAlreadyExists):
		apierrors.Conflict(w, err.Error())
	case errors.As(err, &opErr):
		apierrors.BackendError(w, err.Error())
	default:
		h.logger.Error("Необработанная ошибка",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}

// owner возвращает владельца данных запроса: JWT sub при включённой
// аутентификации, иначе параметр user_id (query или form).
// При отсутствии владельца пишет 400 и возвращает ok = false.
func (h *APIHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.authEnabled {
		if sub := middleware.SubjectFromContext(r.Context()); sub != "" {
			return sub, true
		}
		apierrors.Unauthorized(w, "Не удалось определить пользователя")
		return "", false
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" && r.MultipartForm != nil {
		if v := r.MultipartForm.Value["user_id"]; len(v) > 0 {
			userID = strings.TrimSpace(v[0])
		}
	}
	if userID == "" {
		apierrors.ValidationError(w, "Не указан владелец данных (user_id)")
		return "", false
	}
	return userID, true
}

// actor возвращает инициатора административной операции для метаданных.
func (h *APIHandler) actor(r *http.Request) string {
	if sub := middleware.SubjectFromContext(r.Context()); sub != "" {
		return sub
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		return userID
	}
	return "system"
}

// decodeJSON читает JSON-тело запроса в dest. При ошибке пишет 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.FileTooLarge(w, fmt.Sprintf("Тело запроса превышает %d байт", maxErr.Limit))
			return false
		}
		if errors.Is(err, io.EOF) {
			apierrors.ValidationError(w, "Пустое тело запроса")
			return false
		}
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	return true
}

// pageParams разбирает limit/offset через oapi-codegen runtime.
// При ошибке пишет 400.
func pageParams(w http.ResponseWriter, r *http.Request) (storage.ListOptions, bool) {
	var (
		limit  *int
		offset *int
		page   storage.ListOptions
	)
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		apierrors.ValidationError(w, "Некорректный параметр limit: "+err.Error())
		return page, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &offset); err != nil {
		apierrors.ValidationError(w, "Некорректный параметр offset: "+err.Error())
		return page, false
	}

	page.Limit, page.Offset = paginationDefaults(limit, offset)
	return page, true
}

// queryString разбирает необязательный строковый query-параметр.
func queryString(r *http.Request, name string) string {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil || v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// paginationDefaults нормализует параметры пагинации.
// Возвращает корректные limit и offset.
func paginationDefaults(limit, offset *int) (limitVal, offsetVal int) {
	l := storage.DefaultListLimit
	o := 0

	if limit != nil {
		l = min(max(*limit, 1), 1000)
	}
	if offset != nil {
		o = max(*offset, 0)
	}

	return l, o
}
