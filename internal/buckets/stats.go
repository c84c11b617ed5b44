// stats.go — агрегированная статистика по всем бакетам.
package buckets

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// statsFailure — маркер неудачного листинга бакета в отчёте.
const statsFailure = "Failed to fetch stats"

// statsConcurrency — количество бакетов, листинг которых идёт одновременно.
const statsConcurrency = 4

// BucketStats — количество и суммарный размер объектов бакета.
// При ошибке листинга заполнено только Err.
type BucketStats struct {
	FileCount int
	TotalSize int64
	Err       error
}

// Failed сообщает, завершился ли листинг бакета ошибкой.
func (b BucketStats) Failed() bool {
	return b.Err != nil
}

// MarshalJSON: {"fileCount":n,"totalSize":n} или {"error":"Failed to fetch stats"}.
func (b BucketStats) MarshalJSON() ([]byte, error) {
	if b.Err != nil {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{statsFailure})
	}
	return json.Marshal(struct {
		FileCount int   `json:"fileCount"`
		TotalSize int64 `json:"totalSize"`
	}{b.FileCount, b.TotalSize})
}

// Report — статистика по имени бакета.
type Report map[string]BucketStats

// Stats листит до 1000 объектов каждого бакета из AllBuckets и суммирует
// размеры. Ошибка одного бакета фиксируется в его записи и не прерывает отчёт.
func (s *Store) Stats(ctx context.Context) Report {
	report := make(Report, len(AllBuckets))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsConcurrency)

	for _, bucket := range AllBuckets {
		g.Go(func() error {
			st := s.bucketStats(gctx, bucket)
			mu.Lock()
			report[bucket] = st
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func (s *Store) bucketStats(ctx context.Context, bucket string) BucketStats {
	items, err := s.core.client.List(ctx, bucket, "", storage.ListOptions{Limit: scanLimit})
	if err != nil {
		bucketOperationsTotal.WithLabelValues(bucket, "stats", "error").Inc()
		s.core.logger.Warn("Не удалось получить статистику бакета",
			slog.String("bucket", bucket),
			slog.String("error", err.Error()),
		)
		return BucketStats{Err: err}
	}
	bucketOperationsTotal.WithLabelValues(bucket, "stats", "success").Inc()

	st := BucketStats{FileCount: len(items)}
	for _, it := range items {
		st.TotalSize += it.Size
	}
	return st
}
