// health.go — обработчики health endpoints Bucket Gateway.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (backend хранилища доступен)
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/config"
)

// readyTimeout — таймаут проверки backend-а в readiness probe.
const readyTimeout = 3 * time.Second

// Pinger — проверка доступности backend-а хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	storage Pinger
	backend string
}

// NewHealthHandler создаёт обработчик health endpoints.
// backend — тип backend-а для ответа readiness.
func NewHealthHandler(storage Pinger, backend string) *HealthHandler {
	return &HealthHandler{storage: storage, backend: backend}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		Storage healthCheckResult `json:"storage"`
	} `json:"checks"`
}

// Константы статусов health check.
const (
	statusOK   = "ok"
	statusFail = "fail"
)

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "bucket-gateway",
	})
}

// HealthReady — readiness probe. Проверяет backend хранилища.
// Возвращает 200 (ok) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "bucket-gateway",
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	check := healthCheckResult{Status: statusOK, Backend: h.backend}
	if h.storage == nil {
		check.Status, check.Message = statusFail, "не инициализирован"
	} else if err := h.storage.Ping(ctx); err != nil {
		check.Status, check.Message = statusFail, err.Error()
	}
	resp.Checks.Storage = check
	resp.Status = check.Status

	if resp.Status == statusFail {
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
