package buckets

import (
	"context"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Attachments — вложения писем. Ключ: <userId>/<ts>-<name>.
type Attachments struct{ adapter }

// Upload проверяет расширение и сохраняет вложение.
func (a *Attachments) Upload(ctx context.Context, f File, userID string) (*Result, error) {
	if err := checkExtension(f.Name, attachmentTypes); err != nil {
		return nil, err
	}
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}

	key := owner + "/" + fileKeyName(a.timestamp(), f.Name)
	return a.putFile(ctx, "upload", key, f, map[string]string{
		"userId":       userID,
		"originalName": f.Name,
	})
}

// List возвращает вложения пользователя.
func (a *Attachments) List(ctx context.Context, userID string, page storage.ListOptions) ([]Object, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	return a.list(ctx, "list", owner+"/", page)
}
