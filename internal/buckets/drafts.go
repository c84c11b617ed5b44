package buckets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Drafts — черновики контента.
// Ключ: <userId>/drafts/[<category>/]<ts>-<title>.<txt|json>.
type Drafts struct{ adapter }

// Save сохраняет черновик. Формат text пишет только Content как text/plain,
// формат json — запись целиком.
func (d *Drafts) Save(ctx context.Context, draft model.Draft, userID string) (*Result, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	if draft.Format == "" {
		draft.Format = model.DraftFormatText
	}
	if draft.Title == "" {
		draft.Title = "untitled"
	}

	prefix := owner + "/drafts/"
	if draft.Category != "" {
		prefix += segment(draft.Category, DefaultCategory) + "/"
	}
	name := d.timestamp() + "-" + Sanitize(draft.Title)

	meta := map[string]string{
		"userId":   userID,
		"category": draft.Category,
		"title":    draft.Title,
		"format":   draft.Format,
	}

	switch draft.Format {
	case model.DraftFormatText:
		return d.put(ctx, "save", prefix+name+".txt", strings.NewReader(draft.Content),
			"text/plain; charset=utf-8", meta, false)
	case model.DraftFormatJSON:
		return d.putJSON(ctx, "save", prefix+name+".json", draft, meta, false)
	default:
		return nil, fmt.Errorf("%w: draft format must be text or json, got %q", ErrInvalidArgument, draft.Format)
	}
}

// List возвращает черновики пользователя; пустая категория — все.
func (d *Drafts) List(ctx context.Context, userID, category string, page storage.ListOptions) ([]Object, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	prefix := owner + "/drafts/"
	if category != "" {
		prefix += segment(category, DefaultCategory) + "/"
	}
	return d.list(ctx, "list", prefix, page)
}

// Load читает черновик. Для text-черновика заголовок и категория
// восстанавливаются из метаданных объекта.
func (d *Drafts) Load(ctx context.Context, key string) (*model.Draft, error) {
	if strings.HasSuffix(key, ".json") {
		var draft model.Draft
		if err := d.getJSON(ctx, "load", key, &draft); err != nil {
			return nil, err
		}
		return &draft, nil
	}

	rc, info, err := d.open(ctx, "load", key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, &OpError{Op: d.label + " load", Err: err}
	}
	return &model.Draft{
		Title:    info.Metadata["title"],
		Content:  buf.String(),
		Category: info.Metadata["category"],
		Format:   model.DraftFormatText,
	}, nil
}

// maxDraftSize — предельный размер черновика, загружаемого файлом.
const maxDraftSize = 5 << 20

func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: draft exceeds %d bytes", ErrInvalidArgument, limit)
	}
	return data, nil
}
