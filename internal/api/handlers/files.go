// files.go — листинги бинарных файлов и отдача объектов.
package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/bucket-gateway/internal/api/errors"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/buckets"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// ListDocuments — GET /api/v1/documents?category=.
func (h *APIHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.Documents.List(r.Context(), userID, queryString(r, "category"), page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}

// ListAttachments — GET /api/v1/attachments.
func (h *APIHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.Attachments.List(r.Context(), userID, page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}

// ListProfileImages — GET /api/v1/profile/images.
func (h *APIHandler) ListProfileImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.Profiles.ListImages(r.Context(), userID, page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}

// ListProductAssets — GET /api/v1/products/{productId}/assets?type=.
func (h *APIHandler) ListProductAssets(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.Products.ListAssets(r.Context(), chi.URLParam(r, "productId"), queryString(r, "type"), page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}

// LatestLegal — GET /api/v1/legal/{type}/latest.
func (h *APIHandler) LatestLegal(w http.ResponseWriter, r *http.Request) {
	obj, err := h.store.Legal.Latest(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// DownloadObject — GET /api/v1/objects/{bucket}/*: любой объект любого бакета.
func (h *APIHandler) DownloadObject(w http.ResponseWriter, r *http.Request) {
	h.serveObject(w, r, false)
}

// ServePublic — GET /public/{bucket}/*: публичные URL локального и in-memory backend-ов.
// Служебные бакеты не раздаются.
func (h *APIHandler) ServePublic(w http.ResponseWriter, r *http.Request) {
	if !buckets.IsPublic(chi.URLParam(r, "bucket")) {
		apierrors.NotFound(w, "Объект не найден")
		return
	}
	h.serveObject(w, r, true)
}

// serveObject отдаёт содержимое объекта потоком.
func (h *APIHandler) serveObject(w http.ResponseWriter, r *http.Request, inline bool) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")

	rc, info, err := h.store.Download(r.Context(), bucket, key)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	defer rc.Close()

	writeObjectHeaders(w, info, inline)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("Ошибка отдачи объекта",
			slog.String("bucket", bucket),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// writeObjectHeaders выставляет заголовки ответа по описанию объекта.
func writeObjectHeaders(w http.ResponseWriter, info *storage.ObjectInfo, inline bool) {
	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if !info.CreatedAt.IsZero() {
		w.Header().Set("Last-Modified", info.CreatedAt.UTC().Format(http.TimeFormat))
	}
	if info.Checksum != "" {
		w.Header().Set("ETag", strconv.Quote(info.Checksum))
	}
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	w.Header().Set("Content-Disposition", disposition+`; filename="`+buckets.Sanitize(info.Name)+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
