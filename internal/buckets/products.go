package buckets

import (
	"context"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// DefaultAssetType — тип ассета товара по умолчанию.
const DefaultAssetType = "images"

// Products — ассеты товаров (изображения, превью, дистрибутивы).
// Ключ: products/<productId>/<type>/<ts>-<name>.
type Products struct{ adapter }

// UploadAsset сохраняет ассет товара от имени администратора.
func (p *Products) UploadAsset(ctx context.Context, f File, productID, assetType, adminID string) (*Result, error) {
	pid, err := requireSegment("productId", productID)
	if err != nil {
		return nil, err
	}
	if assetType == "" {
		assetType = DefaultAssetType
	}

	key := "products/" + pid + "/" + segment(assetType, DefaultAssetType) + "/" + fileKeyName(p.timestamp(), f.Name)
	return p.putFile(ctx, "upload", key, f, map[string]string{
		"userId":       adminID,
		"productId":    productID,
		"assetType":    assetType,
		"originalName": f.Name,
	})
}

// ListAssets возвращает ассеты товара; пустой тип — все типы.
func (p *Products) ListAssets(ctx context.Context, productID, assetType string, page storage.ListOptions) ([]Object, error) {
	pid, err := requireSegment("productId", productID)
	if err != nil {
		return nil, err
	}
	prefix := "products/" + pid + "/"
	if assetType != "" {
		prefix += segment(assetType, DefaultAssetType) + "/"
	}
	return p.list(ctx, "list", prefix, page)
}
