// autoroute.go — единая точка загрузки файлов: выбор адаптера
// по типу контекста загрузки.
package buckets

import (
	"context"
	"errors"
	"fmt"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
)

// ErrUnknownContextType — тип контекста загрузки не распознан.
var ErrUnknownContextType = errors.New("unknown context type")

// Имена типов контекста в wire-форме {type, metadata}.
const (
	ContextEmailAttachment = "email-attachment"
	ContextProfileImage    = "profile-image"
	ContextDocument        = "document"
	ContextProductAsset    = "product-asset"
	ContextDraft           = "draft"
	ContextLegal           = "legal"
)

// UploadContext — закрытое множество контекстов загрузки.
// Реализуется только типами этого пакета.
type UploadContext interface {
	contextType() string
}

// EmailAttachment — вложение письма.
type EmailAttachment struct{}

// ProfileImage — аватар или обложка профиля.
type ProfileImage struct {
	ImageType string
}

// Document — документ пользователя в категории.
type Document struct {
	Category string
}

// ProductAsset — ассет товара.
type ProductAsset struct {
	ProductID string
	AssetType string
}

// DraftUpload — файл, сохраняемый как черновик.
type DraftUpload struct {
	Category string
}

// LegalDocument — юридический документ заданной версии.
type LegalDocument struct {
	DocType string
	Version string
}

func (EmailAttachment) contextType() string { return ContextEmailAttachment }
func (ProfileImage) contextType() string    { return ContextProfileImage }
func (Document) contextType() string        { return ContextDocument }
func (ProductAsset) contextType() string    { return ContextProductAsset }
func (DraftUpload) contextType() string     { return ContextDraft }
func (LegalDocument) contextType() string   { return ContextLegal }

// AdminOnly сообщает, публикует ли контекст общий для всех пользователей
// контент (ассеты товаров, юридические документы). Такие загрузки
// выполняет только администратор.
func AdminOnly(uc UploadContext) bool {
	switch uc.(type) {
	case ProductAsset, LegalDocument:
		return true
	default:
		return false
	}
}

// ParseUploadContext преобразует wire-форму {type, metadata} в контекст.
// Неизвестный тип — ошибка, бакета по умолчанию нет.
func ParseUploadContext(contextType string, metadata map[string]string) (UploadContext, error) {
	switch contextType {
	case ContextEmailAttachment:
		return EmailAttachment{}, nil
	case ContextProfileImage:
		return ProfileImage{ImageType: metadata["imageType"]}, nil
	case ContextDocument:
		return Document{Category: metadata["category"]}, nil
	case ContextProductAsset:
		return ProductAsset{ProductID: metadata["productId"], AssetType: metadata["assetType"]}, nil
	case ContextDraft:
		return DraftUpload{Category: metadata["category"]}, nil
	case ContextLegal:
		return LegalDocument{DocType: metadata["type"], Version: metadata["version"]}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownContextType, contextType)
	}
}

// AutoUpload направляет файл в адаптер, соответствующий контексту.
// Проверки выполняет сам адаптер.
func (s *Store) AutoUpload(ctx context.Context, f File, userID string, uc UploadContext) (*Result, error) {
	switch c := uc.(type) {
	case EmailAttachment:
		return s.Attachments.Upload(ctx, f, userID)

	case ProfileImage:
		imageType := c.ImageType
		if imageType == "" {
			imageType = ImageAvatar
		}
		return s.Profiles.UploadImage(ctx, f, userID, imageType)

	case Document:
		return s.Documents.Upload(ctx, f, userID, c.Category)

	case ProductAsset:
		return s.Products.UploadAsset(ctx, f, c.ProductID, c.AssetType, userID)

	case DraftUpload:
		return s.uploadDraftFile(ctx, f, userID, c.Category)

	case LegalDocument:
		return s.Legal.Upload(ctx, f, c.DocType, c.Version, userID)

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownContextType, uc)
	}
}

// uploadDraftFile сохраняет содержимое файла как черновик: заголовок —
// имя без расширения, формат json для .json, иначе text.
func (s *Store) uploadDraftFile(ctx context.Context, f File, userID, category string) (*Result, error) {
	if f.Body == nil {
		return nil, fmt.Errorf("%w: empty file body", ErrInvalidArgument)
	}
	content, err := readAllLimited(f.Body, maxDraftSize)
	if err != nil {
		return nil, err
	}

	format := model.DraftFormatText
	if Extension(f.Name) == "json" {
		format = model.DraftFormatJSON
	}
	return s.Drafts.Save(ctx, model.Draft{
		Title:    trimExt(f.Name),
		Content:  string(content),
		Category: category,
		Format:   format,
	}, userID)
}
