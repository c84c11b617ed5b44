// Пакет service — фоновые и кэширующие сервисы Bucket Gateway.
// StatsService — агрегированная статистика бакетов через LRU-кэш с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/buckets"
)

// Prometheus-метрики кэша статистики.
var (
	statsCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vs_stats_cache_hits_total",
		Help: "Общее количество попаданий в кэш статистики бакетов.",
	})
	statsCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vs_stats_cache_misses_total",
		Help: "Общее количество промахов кэша статистики бакетов.",
	})
)

// statsKey — единственный ключ кэша: отчёт строится по всем бакетам сразу.
const statsKey = "all"

// StatsSource — источник отчёта по бакетам.
type StatsSource interface {
	Stats(ctx context.Context) buckets.Report
}

// StatsService отдаёт отчёт по бакетам, кэшируя его на ttl.
// Отчёты с отказавшими бакетами не кэшируются: следующий запрос повторит опрос.
type StatsService struct {
	source StatsSource
	cache  *expirable.LRU[string, buckets.Report]
	logger *slog.Logger
}

// NewStatsService создаёт сервис статистики. ttl = 0 отключает кэш.
func NewStatsService(source StatsSource, ttl time.Duration, logger *slog.Logger) *StatsService {
	s := &StatsService{
		source: source,
		logger: logger.With(slog.String("component", "stats")),
	}
	if ttl > 0 {
		s.cache = expirable.NewLRU[string, buckets.Report](1, nil, ttl)
	}
	return s
}

// Get возвращает отчёт и признак того, что он взят из кэша.
func (s *StatsService) Get(ctx context.Context) (buckets.Report, bool) {
	if s.cache != nil {
		if report, ok := s.cache.Get(statsKey); ok {
			statsCacheHitsTotal.Inc()
			return report, true
		}
		statsCacheMissesTotal.Inc()
	}

	start := time.Now()
	report := s.source.Stats(ctx)

	failed := 0
	for _, st := range report {
		if st.Failed() {
			failed++
		}
	}
	s.logger.Debug("Статистика бакетов собрана",
		slog.Int("buckets", len(report)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)),
	)

	if s.cache != nil && failed == 0 {
		s.cache.Add(statsKey, report)
	}
	return report, false
}

// Invalidate сбрасывает кэш.
func (s *StatsService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}
