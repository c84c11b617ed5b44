package buckets

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Backups — резервные копии данных. Ключ: <date>/<type>/<ts>-backup.<json|csv>.
type Backups struct{ adapter }

// Create сохраняет резервную копию записей в формате json или csv.
func (b *Backups) Create(ctx context.Context, req model.BackupRequest, adminID string) (*Result, error) {
	backupType, err := requireSegment("backup type", req.Type)
	if err != nil {
		return nil, err
	}
	if req.Format == "" {
		req.Format = model.BackupFormatJSON
	}
	if req.Records == nil {
		req.Records = []map[string]any{}
	}

	var (
		data        []byte
		contentType string
	)
	switch req.Format {
	case model.BackupFormatJSON:
		data, err = json.Marshal(req.Records)
		contentType = "application/json"
	case model.BackupFormatCSV:
		data, err = encodeCSV(req.Records)
		contentType = "text/csv"
	default:
		return nil, fmt.Errorf("%w: backup format must be json or csv, got %q", ErrInvalidArgument, req.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encode backup: %v", ErrInvalidArgument, err)
	}

	now := b.now()
	key := DatePart(now) + "/" + backupType + "/" + Timestamp(now) + "-backup." + req.Format
	return b.put(ctx, "create", key, bytes.NewReader(data), contentType, map[string]string{
		"userId":      adminID,
		"backupType":  req.Type,
		"format":      req.Format,
		"recordCount": strconv.Itoa(len(req.Records)),
	}, false)
}

// List возвращает резервные копии за дату (пустая — все даты).
func (b *Backups) List(ctx context.Context, date string, page storage.ListOptions) ([]Object, error) {
	prefix := ""
	if date != "" {
		prefix = segment(date, "") + "/"
	}
	return b.list(ctx, "list", prefix, page)
}

// encodeCSV пишет заголовок (отсортированное объединение ключей записей)
// и по строке на запись. Вложенные значения кодируются как JSON.
func encodeCSV(records []map[string]any) ([]byte, error) {
	seen := map[string]bool{}
	var header []string
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	slices.Sort(header)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	row := make([]string, len(header))
	for _, r := range records {
		for i, k := range header {
			cell, err := csvCell(r[k])
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			row[i] = cell
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func csvCell(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool, int, int64, float64, json.Number:
		return fmt.Sprint(val), nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
