package buckets

import (
	"context"
	"io"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// DefaultCategory — категория документа и черновика по умолчанию.
const DefaultCategory = "general"

// Documents — пользовательские документы.
// Ключ: <userId>/documents/<category>/<ts>-<name>.
type Documents struct{ adapter }

// Upload проверяет расширение и сохраняет документ в категорию.
func (d *Documents) Upload(ctx context.Context, f File, userID, category string) (*Result, error) {
	if err := checkExtension(f.Name, documentTypes); err != nil {
		return nil, err
	}
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = DefaultCategory
	}

	key := owner + "/documents/" + segment(category, DefaultCategory) + "/" + fileKeyName(d.timestamp(), f.Name)
	return d.putFile(ctx, "upload", key, f, map[string]string{
		"userId":       userID,
		"category":     category,
		"documentType": Extension(f.Name),
		"originalName": f.Name,
	})
}

// List возвращает документы пользователя; пустая категория — все категории.
func (d *Documents) List(ctx context.Context, userID, category string, page storage.ListOptions) ([]Object, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	prefix := owner + "/documents/"
	if category != "" {
		prefix += segment(category, DefaultCategory) + "/"
	}
	return d.list(ctx, "list", prefix, page)
}

// Download открывает документ на чтение. Вызывающий код закрывает ReadCloser.
func (d *Documents) Download(ctx context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	return d.open(ctx, "download", key)
}
