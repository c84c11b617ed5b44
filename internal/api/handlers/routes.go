// routes.go — регистрация маршрутов API в chi-роутере.
package handlers

import "github.com/go-chi/chi/v5"

// RegisterUserRoutes регистрирует маршруты пользователя (scope storage:write).
func (h *APIHandler) RegisterUserRoutes(r chi.Router) {
	r.Post("/uploads", h.AutoUpload)

	r.Post("/emails", h.StoreEmail)
	r.Post("/logs", h.WriteLog)

	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.SaveProfile)
	r.Get("/profile/images", h.ListProfileImages)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.SaveSettings)

	r.Post("/chats/exports", h.ExportChat)
	r.Get("/chats/exports", h.ListChatExports)

	r.Post("/drafts", h.SaveDraft)
	r.Get("/drafts", h.ListDrafts)

	r.Get("/documents", h.ListDocuments)
	r.Get("/attachments", h.ListAttachments)
	r.Get("/products/{productId}/assets", h.ListProductAssets)
	r.Get("/legal/{type}/latest", h.LatestLegal)
}

// RegisterAdminRoutes регистрирует административные маршруты (scope storage:admin).
func (h *APIHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/emails", h.ListEmails)
	r.Get("/emails/{key}", h.GetEmail)
	r.Delete("/emails/{key}", h.DeleteEmail)

	r.Get("/logs", h.ListLogs)

	r.Get("/admin/settings/{name}", h.GetGlobalSetting)
	r.Put("/admin/settings/{name}", h.SaveGlobalSetting)

	r.Post("/admin/backups", h.CreateBackup)
	r.Get("/admin/backups", h.ListBackups)
	r.Get("/admin/stats", h.BucketStats)

	r.Get("/objects/{bucket}/*", h.DownloadObject)
	r.Head("/objects/{bucket}/*", h.DownloadObject)
}

// RegisterPublicRoutes регистрирует раздачу публичных URL.
func (h *APIHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/public/{bucket}/*", h.ServePublic)
	r.Head("/public/{bucket}/*", h.ServePublic)
}
