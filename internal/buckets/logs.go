package buckets

import (
	"context"
	"fmt"
	"strings"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Logs — системный журнал, разложенный по дате и уровню.
// Ключ: <date>/<level>/<ts>-log.json.
type Logs struct{ adapter }

// normalizeLevel приводит уровень к одному из debug/info/warn/error.
func normalizeLevel(level string) (string, error) {
	switch strings.ToLower(level) {
	case "":
		return model.LevelInfo, nil
	case model.LevelDebug, model.LevelInfo, model.LevelError:
		return strings.ToLower(level), nil
	case model.LevelWarn, "warning":
		return model.LevelWarn, nil
	default:
		return "", fmt.Errorf("%w: unknown log level %q", ErrInvalidArgument, level)
	}
}

// Write сохраняет запись журнала. Дата и timestamp ключа берутся
// из момента записи, пустой Timestamp записи заполняется им же.
func (l *Logs) Write(ctx context.Context, entry model.SystemLog, userID string) (*Result, error) {
	level, err := normalizeLevel(entry.Level)
	if err != nil {
		return nil, err
	}
	entry.Level = level

	now := l.now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now.UTC()
	}

	key := DatePart(now) + "/" + level + "/" + Timestamp(now) + "-log.json"
	return l.putJSON(ctx, "write", key, entry, map[string]string{
		"userId": userID,
		"level":  level,
		"source": entry.Source,
	}, false)
}

// List возвращает записи за дату (YYYY-MM-DD, пустая — сегодня)
// и, если задан, уровень.
func (l *Logs) List(ctx context.Context, date, level string, page storage.ListOptions) ([]Object, error) {
	if date == "" {
		date = DatePart(l.now())
	}
	prefix := segment(date, "") + "/"
	if level != "" {
		lvl, err := normalizeLevel(level)
		if err != nil {
			return nil, err
		}
		prefix += lvl + "/"
	}
	return l.list(ctx, "list", prefix, page)
}

// Read декодирует запись журнала по ключу.
func (l *Logs) Read(ctx context.Context, key string) (*model.SystemLog, error) {
	var entry model.SystemLog
	if err := l.getJSON(ctx, "read", key, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
