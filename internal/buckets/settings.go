package buckets

import (
	"context"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
)

// Settings — пользовательские и глобальные настройки.
// Ключи: users/<userId>/settings-<ts>.json, global/<settingName>.json.
// Глобальная настройка перезаписывается по фиксированному ключу.
type Settings struct{ adapter }

// SaveUser сохраняет новую версию настроек пользователя.
func (s *Settings) SaveUser(ctx context.Context, settings model.UserSettings, userID string) (*Result, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	key := "users/" + owner + "/settings-" + s.timestamp() + ".json"
	return s.putJSON(ctx, "save", key, settings, map[string]string{"userId": userID}, false)
}

// LatestUser возвращает последнюю версию настроек пользователя.
func (s *Settings) LatestUser(ctx context.Context, userID string) (*model.UserSettings, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	var settings model.UserSettings
	if _, err := s.latestJSON(ctx, "fetch", "users/"+owner+"/settings-", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveGlobal записывает глобальную настройку (upsert).
func (s *Settings) SaveGlobal(ctx context.Context, name string, value any, adminID string) (*Result, error) {
	setting, err := requireSegment("settingName", name)
	if err != nil {
		return nil, err
	}
	return s.putJSON(ctx, "save", "global/"+setting+".json", value, map[string]string{
		"userId":      adminID,
		"settingName": name,
	}, true)
}

// Global декодирует глобальную настройку в dest.
func (s *Settings) Global(ctx context.Context, name string, dest any) error {
	setting, err := requireSegment("settingName", name)
	if err != nil {
		return err
	}
	return s.getJSON(ctx, "fetch", "global/"+setting+".json", dest)
}
