package buckets

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// expiredScanPage — размер страницы при поиске устаревших писем.
const expiredScanPage = 1000

// Emails — журнал отправленных писем. Единственный бакет с удалением.
// Ключ: email-<ts>.json.
type Emails struct{ adapter }

// Upload сохраняет запись о письме. Пустые ID и Timestamp заполняются.
func (e *Emails) Upload(ctx context.Context, log model.EmailLog, userID string) (*Result, error) {
	now := e.now()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = now.UTC()
	}

	key := "email-" + Timestamp(now) + ".json"
	meta := map[string]string{
		"userId":         userID,
		"emailTimestamp": formatTime(log.Timestamp),
		"emailType":      log.Type,
		"recipient":      log.To,
	}
	return e.putJSON(ctx, "upload", key, log, meta, false)
}

// List возвращает записи о письмах, новые первые.
func (e *Emails) List(ctx context.Context, page storage.ListOptions) ([]Object, error) {
	return e.list(ctx, "list", "email-", page)
}

// Download читает запись о письме по ключу.
func (e *Emails) Download(ctx context.Context, key string) (*model.EmailLog, error) {
	var log model.EmailLog
	if err := e.getJSON(ctx, "download", key, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// Delete удаляет записи о письмах.
func (e *Emails) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := e.client.Remove(ctx, e.bucket, keys...); err != nil {
		return e.fail("delete", err)
	}
	e.ok("delete")
	return nil
}

// Expired возвращает ключи писем, записанных раньше before.
func (e *Emails) Expired(ctx context.Context, before time.Time) ([]string, error) {
	var keys []string
	for offset := 0; ; offset += expiredScanPage {
		items, err := e.client.List(ctx, e.bucket, "email-", storage.ListOptions{Limit: expiredScanPage, Offset: offset})
		if err != nil {
			return nil, e.fail("list", err)
		}
		for _, it := range items {
			if it.CreatedAt.Before(before) {
				keys = append(keys, it.Key)
			}
		}
		if len(items) < expiredScanPage {
			break
		}
	}
	e.ok("list")
	return keys, nil
}
