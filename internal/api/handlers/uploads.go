// uploads.go — POST /api/v1/uploads: multipart-загрузка с авто-маршрутизацией.
// Поля формы: file (бинарный файл), type (тип контекста), metadata (JSON-объект строк).
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/bucket-gateway/internal/api/errors"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/api/middleware"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/buckets"
)

// multipartMemory — часть multipart-формы, удерживаемая в памяти; остальное на диске.
const multipartMemory = 8 << 20

// AutoUpload — POST /api/v1/uploads.
func (h *APIHandler) AutoUpload(w http.ResponseWriter, r *http.Request) {
	// Запас на заголовки и служебные поля формы
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.FileTooLarge(w, fmt.Sprintf("Файл превышает лимит %d байт", h.maxUploadSize))
			return
		}
		apierrors.ValidationError(w, "Некорректная multipart-форма: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Отсутствует поле file")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		apierrors.FileTooLarge(w, fmt.Sprintf("Файл превышает лимит %d байт", h.maxUploadSize))
		return
	}

	var metadata map[string]string
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			apierrors.ValidationError(w, "Поле metadata должно быть JSON-объектом строк")
			return
		}
	}

	// Тип по умолчанию от клиента не несёт информации: определяем сами
	contentType := header.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		contentType = ""
	}

	uc, err := buckets.ParseUploadContext(r.FormValue("type"), metadata)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if h.authEnabled && buckets.AdminOnly(uc) && !middleware.HasScope(r.Context(), middleware.ScopeAdmin) {
		apierrors.Forbidden(w, "Недостаточно прав: загрузка "+r.FormValue("type")+" требует scope "+middleware.ScopeAdmin)
		return
	}

	res, err := h.store.AutoUpload(r.Context(), buckets.File{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, userID, uc)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.logger.Info("Файл загружен",
		slog.String("bucket", res.Bucket),
		slog.String("key", res.Key),
		slog.String("user_id", userID),
		slog.Int64("size", header.Size),
	)
	writeJSON(w, http.StatusCreated, res)
}
