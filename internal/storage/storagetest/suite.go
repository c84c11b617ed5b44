// Пакет storagetest — общий набор проверок контракта storage.Client.
// Вызывается из тестов каждой реализации (memstore, localstore, remote).
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// Factory создаёт чистый экземпляр клиента для одного подтеста.
type Factory func(t *testing.T) storage.Client

// Run прогоняет проверки контракта для реализации storage.Client.
func Run(t *testing.T, newClient Factory) {
	t.Run("UploadDownload", func(t *testing.T) { testUploadDownload(t, newClient(t)) })
	t.Run("UploadWithoutUpsert", func(t *testing.T) { testNoUpsert(t, newClient(t)) })
	t.Run("UploadUpsert", func(t *testing.T) { testUpsert(t, newClient(t)) })
	t.Run("DownloadMissing", func(t *testing.T) { testDownloadMissing(t, newClient(t)) })
	t.Run("ListPrefix", func(t *testing.T) { testListPrefix(t, newClient(t)) })
	t.Run("ListLimit", func(t *testing.T) { testListLimit(t, newClient(t)) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, newClient(t)) })
	t.Run("PublicURL", func(t *testing.T) { testPublicURL(t, newClient(t)) })
}

func upload(t *testing.T, c storage.Client, bucket, key, body string, meta map[string]string) {
	t.Helper()
	_, err := c.Upload(context.Background(), bucket, key, strings.NewReader(body), storage.UploadOptions{
		ContentType: "text/plain",
		Metadata:    meta,
	})
	if err != nil {
		t.Fatalf("Upload %s/%s: %v", bucket, key, err)
	}
}

func testUploadDownload(t *testing.T, c storage.Client) {
	ctx := context.Background()
	info, err := c.Upload(ctx, "documents", "u1/documents/general/a.txt", strings.NewReader("hello"), storage.UploadOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"userId": "u1", "category": "general"},
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if info.Size != 5 {
		t.Errorf("Size = %d, ожидалось 5", info.Size)
	}
	if info.Name != "a.txt" {
		t.Errorf("Name = %q, ожидалось a.txt", info.Name)
	}

	rc, got, err := c.Download(ctx, "documents", "u1/documents/general/a.txt")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("чтение: %v", err)
	}
	if !bytes.Equal(data, []byte("hello")) {
		t.Errorf("содержимое = %q, ожидалось hello", data)
	}
	if got.ContentType != "text/plain" {
		t.Errorf("ContentType = %q", got.ContentType)
	}
	if got.Metadata["userId"] != "u1" || got.Metadata["category"] != "general" {
		t.Errorf("метаданные не сохранены: %v", got.Metadata)
	}
}

func testNoUpsert(t *testing.T, c storage.Client) {
	upload(t, c, "settings", "global/theme.json", "{}", nil)
	_, err := c.Upload(context.Background(), "settings", "global/theme.json", strings.NewReader("{}"), storage.UploadOptions{})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("ожидалась ErrAlreadyExists, получено %v", err)
	}
}

func testUpsert(t *testing.T, c storage.Client) {
	ctx := context.Background()
	upload(t, c, "settings", "global/theme.json", `{"v":1}`, nil)
	_, err := c.Upload(ctx, "settings", "global/theme.json", strings.NewReader(`{"v":2}`), storage.UploadOptions{Upsert: true})
	if err != nil {
		t.Fatalf("Upload upsert: %v", err)
	}
	rc, _, err := c.Download(ctx, "settings", "global/theme.json")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `{"v":2}` {
		t.Errorf("после upsert содержимое = %s", data)
	}
}

func testDownloadMissing(t *testing.T, c storage.Client) {
	_, _, err := c.Download(context.Background(), "emails", "email-missing.json")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("ожидалась ErrNotFound, получено %v", err)
	}
}

func testListPrefix(t *testing.T, c storage.Client) {
	upload(t, c, "drafts", "u1/drafts/a.txt", "a", nil)
	upload(t, c, "drafts", "u1/drafts/blog/b.txt", "bb", nil)
	upload(t, c, "drafts", "u2/drafts/c.txt", "ccc", nil)

	items, err := c.List(context.Background(), "drafts", "u1/", storage.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ожидалось 2 объекта, получено %d", len(items))
	}
	for _, it := range items {
		if !strings.HasPrefix(it.Key, "u1/") {
			t.Errorf("объект вне префикса: %s", it.Key)
		}
	}

	empty, err := c.List(context.Background(), "backups", "", storage.ListOptions{})
	if err != nil {
		t.Fatalf("List пустого бакета: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("пустой бакет вернул %d объектов", len(empty))
	}
}

func testListLimit(t *testing.T, c storage.Client) {
	for _, k := range []string{"a", "b", "c", "d"} {
		upload(t, c, "logs", "2026-10-19/info/"+k+"-log.json", "{}", nil)
	}
	items, err := c.List(context.Background(), "logs", "", storage.ListOptions{Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("ожидалось 3 объекта с лимитом, получено %d", len(items))
	}
}

func testRemove(t *testing.T, c storage.Client) {
	ctx := context.Background()
	upload(t, c, "emails", "email-1.json", "{}", nil)
	upload(t, c, "emails", "email-2.json", "{}", nil)

	if err := c.Remove(ctx, "emails", "email-1.json", "email-missing.json"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items, err := c.List(ctx, "emails", "", storage.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Key != "email-2.json" {
		t.Errorf("после Remove осталось: %+v", items)
	}
}

func testPublicURL(t *testing.T, c storage.Client) {
	u := c.PublicURL("user-profiles", "u1/avatar-x.png")
	if !strings.HasSuffix(u, "user-profiles/u1/avatar-x.png") {
		t.Errorf("PublicURL = %q", u)
	}
}
