// records.go — JSON-записи пользователя: email-логи, системные логи,
// профиль, настройки, экспорты чатов и черновики.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
)

// --- Email-логи ---

// StoreEmail — POST /api/v1/emails.
func (h *APIHandler) StoreEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var log model.EmailLog
	if !decodeJSON(w, r, &log) {
		return
	}
	res, err := h.store.Emails.Upload(r.Context(), log, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListEmails — GET /api/v1/emails.
func (h *APIHandler) ListEmails(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.Emails.List(r.Context(), page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}

// GetEmail — GET /api/v1/emails/{key}.
func (h *APIHandler) GetEmail(w http.ResponseWriter, r *http.Request) {
	log, err := h.store.Emails.Download(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// DeleteEmail — DELETE /api/v1/emails/{key}.
func (h *APIHandler) DeleteEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Emails.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Системные логи ---

// WriteLog — POST /api/v1/logs.
func (h *APIHandler) WriteLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var entry model.SystemLog
	if !decodeJSON(w, r, &entry) {
		return
	}
	res, err := h.store.Logs.Write(r.Context(), entry, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListLogs — GET /api/v1/logs?date=&level=.
func (h *APIHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.Logs.List(r.Context(), queryString(r, "date"), queryString(r, "level"), page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}

// --- Профиль ---

// SaveProfile — PUT /api/v1/profile.
func (h *APIHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var profile model.UserProfile
	if !decodeJSON(w, r, &profile) {
		return
	}
	res, err := h.store.Profiles.SaveProfile(r.Context(), profile, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetProfile — GET /api/v1/profile.
func (h *APIHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	profile, err := h.store.Profiles.LatestProfile(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// --- Настройки ---

// SaveSettings — PUT /api/v1/settings.
func (h *APIHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var settings model.UserSettings
	if !decodeJSON(w, r, &settings) {
		return
	}
	res, err := h.store.Settings.SaveUser(r.Context(), settings, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetSettings — GET /api/v1/settings.
func (h *APIHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	settings, err := h.store.Settings.LatestUser(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// --- Экспорты чатов ---

// ExportChat — POST /api/v1/chats/exports.
func (h *APIHandler) ExportChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var export model.ChatExport
	if !decodeJSON(w, r, &export) {
		return
	}
	res, err := h.store.ChatExports.Export(r.Context(), export, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListChatExports — GET /api/v1/chats/exports.
func (h *APIHandler) ListChatExports(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.ChatExports.List(r.Context(), userID, page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}

// --- Черновики ---

// SaveDraft — POST /api/v1/drafts.
func (h *APIHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var draft model.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}
	res, err := h.store.Drafts.Save(r.Context(), draft, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListDrafts — GET /api/v1/drafts?category=.
func (h *APIHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}
	items, err := h.store.Drafts.List(r.Context(), userID, queryString(r, "category"), page)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeList(w, items)
}
