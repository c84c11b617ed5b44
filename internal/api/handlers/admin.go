// admin.go — административные операции: бэкапы, глобальные настройки, статистика.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
)

// CreateBackup — POST /api/v1/admin/backups.
func (h *APIHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	var req model.BackupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.store.Backups.Create(r.Context(), req, h.actor(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.logger.Info("Бэкап создан",
		slog.String("key", res.Key),
		slog.Int("records", len(req.Records)),
	)
	writeJSON(w, http.StatusCreated, res)
}

// ListBackups — GET /api/v1/admin/backups?date=.
func (h *APIHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.Backups.List(r.Context(), queryString(r, "date"), page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}

// SaveGlobalSetting — PUT /api/v1/admin/settings/{name}. Значение — произвольный JSON.
func (h *APIHandler) SaveGlobalSetting(w http.ResponseWriter, r *http.Request) {
	var value json.RawMessage
	if !decodeJSON(w, r, &value) {
		return
	}
	res, err := h.store.Settings.SaveGlobal(r.Context(), chi.URLParam(r, "name"), value, h.actor(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetGlobalSetting — GET /api/v1/admin/settings/{name}.
func (h *APIHandler) GetGlobalSetting(w http.ResponseWriter, r *http.Request) {
	var value json.RawMessage
	if err := h.store.Settings.Global(r.Context(), chi.URLParam(r, "name"), &value); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value)
}

// BucketStats — GET /api/v1/admin/stats. Отчёт кэшируется, X-Cache сообщает hit/miss.
func (h *APIHandler) BucketStats(w http.ResponseWriter, r *http.Request) {
	report, cached := h.stats.Get(r.Context())
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, report)
}
