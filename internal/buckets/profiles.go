package buckets

import (
	"context"
	"fmt"
	"strings"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Типы изображений профиля.
const (
	ImageAvatar = "avatar"
	ImageCover  = "cover"
)

// Profiles — изображения и JSON-профили пользователей.
// Ключи: <userId>/<avatar|cover>-<ts>.<ext>, <userId>/profile-<ts>.json.
type Profiles struct{ adapter }

// UploadImage сохраняет аватар или обложку.
func (p *Profiles) UploadImage(ctx context.Context, f File, userID, imageType string) (*Result, error) {
	if err := checkExtension(f.Name, profileImageTypes); err != nil {
		return nil, err
	}
	if imageType != ImageAvatar && imageType != ImageCover {
		return nil, fmt.Errorf("%w: image type must be avatar or cover, got %q", ErrInvalidArgument, imageType)
	}
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s-%s.%s", owner, imageType, p.timestamp(), Extension(f.Name))
	return p.putFile(ctx, "image upload", key, f, map[string]string{
		"userId":       userID,
		"imageType":    imageType,
		"originalName": f.Name,
	})
}

// SaveProfile сохраняет снимок профиля. Каждая запись — новый объект.
func (p *Profiles) SaveProfile(ctx context.Context, profile model.UserProfile, userID string) (*Result, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	if profile.UserID == "" {
		profile.UserID = userID
	}

	key := owner + "/profile-" + p.timestamp() + ".json"
	return p.putJSON(ctx, "save", key, profile, map[string]string{"userId": userID}, false)
}

// LatestProfile возвращает последний сохранённый профиль пользователя.
func (p *Profiles) LatestProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	var profile model.UserProfile
	if _, err := p.latestJSON(ctx, "fetch", owner+"/profile-", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListImages возвращает изображения пользователя (без JSON-профилей).
func (p *Profiles) ListImages(ctx context.Context, userID string, page storage.ListOptions) ([]Object, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	all, err := p.list(ctx, "list", owner+"/", storage.ListOptions{Limit: scanLimit})
	if err != nil {
		return nil, err
	}

	images := make([]Object, 0, len(all))
	for _, obj := range all {
		if strings.HasPrefix(obj.Name, "profile-") {
			continue
		}
		images = append(images, obj)
	}
	if page.Offset >= len(images) {
		return []Object{}, nil
	}
	images = images[page.Offset:]
	if limit := page.NormalizeLimit(); len(images) > limit {
		images = images[:limit]
	}
	return images, nil
}
