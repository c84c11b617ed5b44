package buckets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/memstore"
)

// errBackend — имитация отказа backend-а.
var errBackend = errors.New("backend unavailable")

// spyClient считает обращения к backend-у и умеет отказывать
// в листинге отдельных бакетов и в записи.
type spyClient struct {
	storage.Client

	mu        sync.Mutex
	calls     int
	failList  map[string]bool
	failWrite bool
}

func (c *spyClient) inc() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *spyClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *spyClient) Upload(ctx context.Context, bucket, key string, body io.Reader, opts storage.UploadOptions) (*storage.ObjectInfo, error) {
	c.inc()
	if c.failWrite {
		return nil, errBackend
	}
	return c.Client.Upload(ctx, bucket, key, body, opts)
}

func (c *spyClient) Download(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	c.inc()
	return c.Client.Download(ctx, bucket, key)
}

func (c *spyClient) List(ctx context.Context, bucket, prefix string, opts storage.ListOptions) ([]storage.ObjectInfo, error) {
	c.inc()
	if c.failList[bucket] {
		return nil, errBackend
	}
	return c.Client.List(ctx, bucket, prefix, opts)
}

func (c *spyClient) Remove(ctx context.Context, bucket string, keys ...string) error {
	c.inc()
	return c.Client.Remove(ctx, bucket, keys...)
}

// baseTime — момент, от которого отсчитывает тестовый clock.
var baseTime = time.Date(2026, 10, 19, 12, 4, 5, 123_000_000, time.UTC)

// steppingClock возвращает baseTime, baseTime+1ms, baseTime+2ms ...
func steppingClock() func() time.Time {
	var (
		mu sync.Mutex
		n  int
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := baseTime.Add(time.Duration(n) * time.Millisecond)
		n++
		return t
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestStore создаёт Store поверх memstore. Адаптеры и memstore
// получают независимые stepping clock: i-я запись получает метку baseTime+i мс.
func newTestStore(t *testing.T) (*Store, *spyClient) {
	t.Helper()
	spy := &spyClient{
		Client:   memstore.New("http://cdn.test/public", memstore.WithClock(steppingClock())),
		failList: map[string]bool{},
	}
	return New(spy, testLogger(), WithClock(steppingClock())), spy
}
