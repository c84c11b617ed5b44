package memstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/storagetest"
)

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Client {
		return New("http://localhost/public")
	})
}

// TestStore_NewestFirst проверяет сортировку по времени создания.
func TestStore_NewestFirst(t *testing.T) {
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	current := base
	s := New("http://localhost/public", WithClock(func() time.Time { return current }))

	ctx := context.Background()
	for i, key := range []string{"old.json", "mid.json", "new.json"} {
		current = base.Add(time.Duration(i) * time.Minute)
		if _, err := s.Upload(ctx, "emails", key, strings.NewReader("{}"), storage.UploadOptions{}); err != nil {
			t.Fatalf("Upload: %v", err)
		}
	}

	items, err := s.List(ctx, "emails", "", storage.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"new.json", "mid.json", "old.json"}
	for i, it := range items {
		if it.Key != want[i] {
			t.Errorf("позиция %d: %s, ожидалось %s", i, it.Key, want[i])
		}
	}
	if s.Count("emails") != 3 {
		t.Errorf("Count = %d, ожидалось 3", s.Count("emails"))
	}
}

// TestStore_RejectsBadKey проверяет валидацию ключа.
func TestStore_RejectsBadKey(t *testing.T) {
	s := New("")
	for _, key := range []string{"", "/abs", "a/../b", "a//b"} {
		if _, err := s.Upload(context.Background(), "b", key, strings.NewReader("x"), storage.UploadOptions{}); err == nil {
			t.Errorf("ключ %q должен быть отклонён", key)
		}
	}
}
