// retention.go — фоновая очистка устаревших email-логов.
//
// Email-логи — единственный бакет с путём удаления. Сервис периодически
// находит логи старше срока хранения и удаляет их пакетами.
// Запускается как горутина с периодическим тикером (VS_RETENTION_INTERVAL).
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики очистки
var (
	retentionRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vs_retention_runs_total",
		Help: "Общее количество запусков очистки email-логов",
	})

	retentionDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vs_retention_deleted_total",
		Help: "Общее количество удалённых email-логов",
	})

	retentionErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vs_retention_errors_total",
		Help: "Общее количество ошибок очистки email-логов",
	})

	retentionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vs_retention_duration_seconds",
		Help:    "Длительность очистки email-логов в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// deleteBatch — количество ключей в одном запросе удаления.
const deleteBatch = 100

// EmailSweeper — операции бакета email-логов, нужные очистке.
type EmailSweeper interface {
	Expired(ctx context.Context, before time.Time) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
}

// RetentionResult — результат одного запуска очистки.
type RetentionResult struct {
	// Expired — найдено логов старше срока хранения
	Expired int
	// Deleted — удалено логов
	Deleted int
	// Errors — количество неудачных операций
	Errors int
	// Skipped — запуск пропущен: предыдущий ещё выполняется
	Skipped bool
	// Duration — длительность выполнения
	Duration time.Duration
}

// RetentionService — сервис фоновой очистки email-логов.
type RetentionService struct {
	emails    EmailSweeper
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu     sync.Mutex // защита от параллельного запуска RunOnce
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRetentionService создаёт сервис очистки.
// retention — срок хранения, interval — период запуска.
func NewRetentionService(emails EmailSweeper, retention, interval time.Duration, logger *slog.Logger) *RetentionService {
	return &RetentionService{
		emails:    emails,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "retention")),
	}
}

// Start запускает фоновую горутину очистки.
// Вызывается один раз при старте приложения.
func (rs *RetentionService) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	rs.cancel = cancel
	rs.done = make(chan struct{})

	go rs.run(runCtx)

	rs.logger.Info("Очистка email-логов запущена",
		slog.String("retention", rs.retention.String()),
		slog.String("interval", rs.interval.String()),
	)
}

// Stop останавливает фоновый процесс и дожидается завершения текущего запуска.
func (rs *RetentionService) Stop() {
	if rs.cancel == nil {
		return
	}
	rs.cancel()
	<-rs.done
	rs.cancel = nil
	rs.logger.Info("Очистка email-логов остановлена")
}

// run — основной цикл фоновой горутины.
func (rs *RetentionService) run(ctx context.Context) {
	defer close(rs.done)

	// Первый запуск — сразу после старта
	rs.RunOnce(ctx)

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rs.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один цикл очистки.
// Параллельный вызов не ждёт текущий запуск и возвращает Skipped = true.
func (rs *RetentionService) RunOnce(ctx context.Context) *RetentionResult {
	if !rs.mu.TryLock() {
		rs.logger.Debug("Очистка уже выполняется, запуск пропущен")
		return &RetentionResult{Skipped: true}
	}
	defer rs.mu.Unlock()

	start := time.Now()
	result := &RetentionResult{}

	cutoff := rs.now().Add(-rs.retention)
	keys, err := rs.emails.Expired(ctx, cutoff)
	if err != nil {
		rs.logger.Error("Ошибка поиска устаревших email-логов",
			slog.String("error", err.Error()),
		)
		result.Errors++
	}
	result.Expired = len(keys)

	for i := 0; i < len(keys); i += deleteBatch {
		if ctx.Err() != nil {
			break
		}
		batch := keys[i:min(i+deleteBatch, len(keys))]
		if err := rs.emails.Delete(ctx, batch...); err != nil {
			rs.logger.Error("Ошибка удаления email-логов",
				slog.Int("batch", len(batch)),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}
		result.Deleted += len(batch)
	}

	result.Duration = time.Since(start)

	retentionRunsTotal.Inc()
	retentionDeletedTotal.Add(float64(result.Deleted))
	retentionErrorsTotal.Add(float64(result.Errors))
	retentionDurationSeconds.Observe(result.Duration.Seconds())

	rs.logger.Info("Очистка email-логов завершена",
		slog.Time("cutoff", cutoff),
		slog.Int("expired", result.Expired),
		slog.Int("deleted", result.Deleted),
		slog.Int("errors", result.Errors),
		slog.Duration("duration", result.Duration),
	)

	return result
}
