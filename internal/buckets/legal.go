package buckets

import (
	"context"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Значения по умолчанию для юридических документов.
const (
	DefaultLegalType    = "terms"
	DefaultLegalVersion = "1.0"
)

// Legal — условия использования, политики, оферты.
// Ключ: <type>/<version>/<ts>-<name>.
type Legal struct{ adapter }

// Upload проверяет расширение и сохраняет версию документа.
func (l *Legal) Upload(ctx context.Context, f File, docType, version, adminID string) (*Result, error) {
	if err := checkExtension(f.Name, legalTypes); err != nil {
		return nil, err
	}
	if docType == "" {
		docType = DefaultLegalType
	}
	if version == "" {
		version = DefaultLegalVersion
	}

	key := segment(docType, DefaultLegalType) + "/" + segment(version, DefaultLegalVersion) + "/" + fileKeyName(l.timestamp(), f.Name)
	return l.putFile(ctx, "upload", key, f, map[string]string{
		"userId":       adminID,
		"documentType": docType,
		"version":      version,
		"originalName": f.Name,
	})
}

// List возвращает документы типа; пустая версия — все версии.
func (l *Legal) List(ctx context.Context, docType, version string, page storage.ListOptions) ([]Object, error) {
	prefix := segment(docType, DefaultLegalType) + "/"
	if version != "" {
		prefix += segment(version, DefaultLegalVersion) + "/"
	}
	return l.list(ctx, "list", prefix, page)
}

// Latest возвращает последний загруженный документ типа (по всем версиям).
func (l *Legal) Latest(ctx context.Context, docType string) (*Object, error) {
	items, err := l.List(ctx, docType, "", storage.ListOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &OpError{Op: l.label + " fetch", Err: storage.ErrNotFound}
	}
	return &items[0], nil
}
