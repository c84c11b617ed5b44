package buckets

import (
	"context"
	"strconv"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// ChatExports — экспорт переписок. Ключ: <userId>/chats/<ts>-chat-<chatId>.json.
type ChatExports struct{ adapter }

// Export сохраняет экспорт чата.
func (c *ChatExports) Export(ctx context.Context, export model.ChatExport, userID string) (*Result, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	chatID, err := requireSegment("chatId", export.ChatID)
	if err != nil {
		return nil, err
	}
	now := c.now()
	if export.ExportedAt.IsZero() {
		export.ExportedAt = now.UTC()
	}
	if export.Messages == nil {
		export.Messages = []model.ChatMessage{}
	}

	key := owner + "/chats/" + Timestamp(now) + "-chat-" + chatID + ".json"
	return c.putJSON(ctx, "export", key, export, map[string]string{
		"userId":       userID,
		"chatId":       export.ChatID,
		"messageCount": strconv.Itoa(len(export.Messages)),
	}, false)
}

// List возвращает экспорты пользователя.
func (c *ChatExports) List(ctx context.Context, userID string, page storage.ListOptions) ([]Object, error) {
	owner, err := requireSegment("userId", userID)
	if err != nil {
		return nil, err
	}
	return c.list(ctx, "list", owner+"/chats/", page)
}
