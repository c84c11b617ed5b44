package buckets

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/domain/model"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

const tsPattern = `\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z`

func file(name, body string) File {
	return File{Name: name, Body: strings.NewReader(body)}
}

// metadataOf читает метаданные записанного объекта напрямую из backend-а.
func metadataOf(t *testing.T, s *Store, bucket, key string) map[string]string {
	t.Helper()
	rc, info, err := s.Client().Download(context.Background(), bucket, key)
	if err != nil {
		t.Fatalf("Download %s/%s: %v", bucket, key, err)
	}
	rc.Close()
	return info.Metadata
}

func assertKey(t *testing.T, res *Result, bucket, pattern string) {
	t.Helper()
	if res.Bucket != bucket {
		t.Errorf("Bucket = %q, ожидалось %q", res.Bucket, bucket)
	}
	re := regexp.MustCompile("^" + pattern + "$")
	if !re.MatchString(res.Key) {
		t.Errorf("ключ %q не соответствует шаблону %s", res.Key, pattern)
	}
	if !strings.HasSuffix(res.URL, "/"+bucket+"/"+res.Key) {
		t.Errorf("URL %q не указывает на %s/%s", res.URL, bucket, res.Key)
	}
}

func TestKeyShapes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		upload  func() (*Result, error)
		bucket  string
		pattern string
	}{
		{"email", func() (*Result, error) {
			return s.Emails.Upload(ctx, model.EmailLog{To: "a@b.c", Subject: "Hi", Type: "welcome"}, "u1")
		}, BucketEmails, `email-` + tsPattern + `\.json`},
		{"attachment", func() (*Result, error) {
			return s.Attachments.Upload(ctx, file("Invoice 42.pdf", "%PDF"), "u1")
		}, BucketAttachments, `u1/` + tsPattern + `-Invoice_42\.pdf`},
		{"avatar", func() (*Result, error) {
			return s.Profiles.UploadImage(ctx, file("me.PNG", "img"), "u1", ImageAvatar)
		}, BucketProfiles, `u1/avatar-` + tsPattern + `\.png`},
		{"profile", func() (*Result, error) {
			return s.Profiles.SaveProfile(ctx, model.UserProfile{DisplayName: "Ann"}, "u1")
		}, BucketProfiles, `u1/profile-` + tsPattern + `\.json`},
		{"document", func() (*Result, error) {
			return s.Documents.Upload(ctx, file("cv.docx", "doc"), "u1", "")
		}, BucketDocuments, `u1/documents/general/` + tsPattern + `-cv\.docx`},
		{"log", func() (*Result, error) {
			return s.Logs.Write(ctx, model.SystemLog{Level: "WARNING", Message: "disk", Source: "api"}, "u1")
		}, BucketLogs, `2026-10-19/warn/` + tsPattern + `-log\.json`},
		{"product", func() (*Result, error) {
			return s.Products.UploadAsset(ctx, file("hero.jpg", "img"), "p-7", "", "admin")
		}, BucketProducts, `products/p-7/images/` + tsPattern + `-hero\.jpg`},
		{"chat", func() (*Result, error) {
			return s.ChatExports.Export(ctx, model.ChatExport{ChatID: "c9"}, "u1")
		}, BucketChatExports, `u1/chats/` + tsPattern + `-chat-c9\.json`},
		{"draft text", func() (*Result, error) {
			return s.Drafts.Save(ctx, model.Draft{Title: "My post", Content: "x"}, "u1")
		}, BucketDrafts, `u1/drafts/` + tsPattern + `-My_post\.txt`},
		{"draft json", func() (*Result, error) {
			return s.Drafts.Save(ctx, model.Draft{Title: "Page", Category: "blog", Format: "json"}, "u1")
		}, BucketDrafts, `u1/drafts/blog/` + tsPattern + `-Page\.json`},
		{"user settings", func() (*Result, error) {
			return s.Settings.SaveUser(ctx, model.UserSettings{Theme: "dark"}, "u1")
		}, BucketSettings, `users/u1/settings-` + tsPattern + `\.json`},
		{"global setting", func() (*Result, error) {
			return s.Settings.SaveGlobal(ctx, "maintenance mode", map[string]bool{"on": true}, "admin")
		}, BucketSettings, `global/maintenance_mode\.json`},
		{"backup", func() (*Result, error) {
			return s.Backups.Create(ctx, model.BackupRequest{Type: "orders", Format: "csv"}, "admin")
		}, BucketBackups, `2026-10-19/orders/` + tsPattern + `-backup\.csv`},
		{"legal", func() (*Result, error) {
			return s.Legal.Upload(ctx, file("terms.md", "# Terms"), "", "", "admin")
		}, BucketLegal, `terms/1\.0/` + tsPattern + `-terms\.md`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.upload()
			if err != nil {
				t.Fatalf("upload: %v", err)
			}
			assertKey(t, res, tt.bucket, tt.pattern)
		})
	}
}

func TestMetadata(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	res, err := s.Documents.Upload(ctx, file("Contract.PDF", "%PDF"), "u1", "legal stuff")
	if err != nil {
		t.Fatalf("Documents.Upload: %v", err)
	}
	meta := metadataOf(t, s, BucketDocuments, res.Key)
	want := map[string]string{
		"userId":       "u1",
		"category":     "legal stuff",
		"documentType": "pdf",
		"originalName": "Contract.PDF",
	}
	if !reflect.DeepEqual(meta, want) {
		t.Errorf("метаданные документа = %v, ожидалось %v", meta, want)
	}
	if !strings.Contains(res.Key, "/documents/legal_stuff/") {
		t.Errorf("категория не санитизирована в ключе: %s", res.Key)
	}

	res, err = s.Emails.Upload(ctx, model.EmailLog{To: "a@b.c", Type: "receipt"}, "u2")
	if err != nil {
		t.Fatalf("Emails.Upload: %v", err)
	}
	meta = metadataOf(t, s, BucketEmails, res.Key)
	if meta["userId"] != "u2" || meta["emailType"] != "receipt" || meta["recipient"] != "a@b.c" || meta["emailTimestamp"] == "" {
		t.Errorf("метаданные письма = %v", meta)
	}

	res, err = s.Backups.Create(ctx, model.BackupRequest{Type: "users", Records: []map[string]any{{"id": 1}, {"id": 2}}}, "admin")
	if err != nil {
		t.Fatalf("Backups.Create: %v", err)
	}
	meta = metadataOf(t, s, BucketBackups, res.Key)
	if meta["backupType"] != "users" || meta["format"] != "json" || meta["recordCount"] != "2" || meta["userId"] != "admin" {
		t.Errorf("метаданные бэкапа = %v", meta)
	}

	res, err = s.ChatExports.Export(ctx, model.ChatExport{ChatID: "c1", Messages: []model.ChatMessage{{Role: "user", Content: "hi"}}}, "u1")
	if err != nil {
		t.Fatalf("ChatExports.Export: %v", err)
	}
	meta = metadataOf(t, s, BucketChatExports, res.Key)
	if meta["chatId"] != "c1" || meta["messageCount"] != "1" {
		t.Errorf("метаданные экспорта = %v", meta)
	}
}

// TestAllowList_NoBackendCall — недопустимое расширение отклоняется
// до любого обращения к backend-у.
func TestAllowList_NoBackendCall(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		upload func(s *Store) (*Result, error)
	}{
		{"attachment exe", func(s *Store) (*Result, error) {
			return s.Attachments.Upload(ctx, file("setup.exe", "MZ"), "u1")
		}},
		{"document jpg", func(s *Store) (*Result, error) {
			return s.Documents.Upload(ctx, file("photo.jpg", "img"), "u1", "general")
		}},
		{"legal docx", func(s *Store) (*Result, error) {
			return s.Legal.Upload(ctx, file("terms.docx", "doc"), "terms", "2.0", "admin")
		}},
		{"profile bmp", func(s *Store) (*Result, error) {
			return s.Profiles.UploadImage(ctx, file("me.bmp", "img"), "u1", ImageCover)
		}},
		{"profile no extension", func(s *Store) (*Result, error) {
			return s.Profiles.UploadImage(ctx, file("avatar", "img"), "u1", ImageAvatar)
		}},
		{"auto-router document", func(s *Store) (*Result, error) {
			return s.AutoUpload(ctx, file("script.sh", "#!"), "u1", Document{Category: "misc"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, spy := newTestStore(t)
			_, err := tt.upload(s)
			if !errors.Is(err, ErrFileTypeNotAllowed) {
				t.Fatalf("ожидалась ErrFileTypeNotAllowed, получено %v", err)
			}
			if spy.Calls() != 0 {
				t.Errorf("backend вызван %d раз до проверки расширения", spy.Calls())
			}
		})
	}
}

func TestOpError_Prefix(t *testing.T) {
	s, spy := newTestStore(t)
	spy.failWrite = true

	_, err := s.Emails.Upload(context.Background(), model.EmailLog{To: "a@b.c"}, "u1")
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if !strings.HasPrefix(err.Error(), "Email upload failed: ") {
		t.Errorf("сообщение = %q", err.Error())
	}
	if !errors.Is(err, errBackend) {
		t.Error("errors.Is должен видеть исходную ошибку")
	}
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != "Email upload" {
		t.Errorf("ожидалась OpError{Op: Email upload}, получено %#v", err)
	}

	_, err = s.Documents.Upload(context.Background(), file("a.pdf", "x"), "u1", "")
	if err == nil || !strings.HasPrefix(err.Error(), "Document upload failed: ") {
		t.Errorf("сообщение = %v", err)
	}
}

// TestUserSettings_RoundTrip — сохранённые настройки возвращаются LatestUser без изменений.
func TestUserSettings_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	older := model.UserSettings{Theme: "light", Language: "en"}
	if _, err := s.Settings.SaveUser(ctx, older, "u1"); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	want := model.UserSettings{
		Theme:         "dark",
		Language:      "ru",
		Timezone:      "Europe/Moscow",
		Notifications: model.NotificationSettings{Email: true, Push: false, Marketing: true},
		Privacy:       model.PrivacySettings{ProfileVisible: true},
		Preferences:   map[string]string{"currency": "USD", "layout": "grid"},
	}
	if _, err := s.Settings.SaveUser(ctx, want, "u1"); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	// Настройки другого пользователя не должны попасть в выборку
	if _, err := s.Settings.SaveUser(ctx, model.UserSettings{Theme: "other"}, "u10"); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := s.Settings.LatestUser(ctx, "u1")
	if err != nil {
		t.Fatalf("LatestUser: %v", err)
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("LatestUser = %+v, ожидалось %+v", *got, want)
	}

	_, err = s.Settings.LatestUser(ctx, "nobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("для пользователя без настроек ожидалась ErrNotFound, получено %v", err)
	}
}

func TestGlobalSettings_Upsert(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	type banner struct {
		Text    string `json:"text"`
		Enabled bool   `json:"enabled"`
	}
	if _, err := s.Settings.SaveGlobal(ctx, "banner", banner{Text: "v1"}, "admin"); err != nil {
		t.Fatalf("SaveGlobal: %v", err)
	}
	if _, err := s.Settings.SaveGlobal(ctx, "banner", banner{Text: "v2", Enabled: true}, "admin"); err != nil {
		t.Fatalf("повторный SaveGlobal должен перезаписывать: %v", err)
	}

	var got banner
	if err := s.Settings.Global(ctx, "banner", &got); err != nil {
		t.Fatalf("Global: %v", err)
	}
	if got != (banner{Text: "v2", Enabled: true}) {
		t.Errorf("Global = %+v", got)
	}
	if err := s.Settings.Global(ctx, "missing", &got); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
}

func TestProfiles(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Profiles.UploadImage(ctx, file("a.jpg", "1"), "u1", ImageAvatar); err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if _, err := s.Profiles.UploadImage(ctx, file("c.webp", "2"), "u1", ImageCover); err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if _, err := s.Profiles.SaveProfile(ctx, model.UserProfile{DisplayName: "Old"}, "u1"); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if _, err := s.Profiles.SaveProfile(ctx, model.UserProfile{DisplayName: "New", Bio: "hi"}, "u1"); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := s.Profiles.LatestProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("LatestProfile: %v", err)
	}
	if got.DisplayName != "New" || got.UserID != "u1" {
		t.Errorf("LatestProfile = %+v", got)
	}

	images, err := s.Profiles.ListImages(ctx, "u1", storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("ожидалось 2 изображения, получено %d", len(images))
	}
	if !strings.HasPrefix(images[0].Name, "cover-") {
		t.Errorf("новые первые: ожидалась обложка, получено %s", images[0].Name)
	}

	if _, err := s.Profiles.UploadImage(ctx, file("x.png", "1"), "u1", "banner"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("неизвестный тип изображения: ожидалась ErrInvalidArgument, получено %v", err)
	}
}

func TestDrafts_Load(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	textRes, err := s.Drafts.Save(ctx, model.Draft{Title: "Notes", Content: "line 1\nline 2", Category: "ideas"}, "u1")
	if err != nil {
		t.Fatalf("Save text: %v", err)
	}
	jsonDraft := model.Draft{Title: "Landing", Content: `{"blocks":[]}`, Format: "json", Tags: []string{"web"}}
	jsonRes, err := s.Drafts.Save(ctx, jsonDraft, "u1")
	if err != nil {
		t.Fatalf("Save json: %v", err)
	}

	got, err := s.Drafts.Load(ctx, textRes.Key)
	if err != nil {
		t.Fatalf("Load text: %v", err)
	}
	want := model.Draft{Title: "Notes", Content: "line 1\nline 2", Category: "ideas", Format: "text"}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("Load text = %+v, ожидалось %+v", *got, want)
	}

	got, err = s.Drafts.Load(ctx, jsonRes.Key)
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}
	if !reflect.DeepEqual(*got, jsonDraft) {
		t.Errorf("Load json = %+v, ожидалось %+v", *got, jsonDraft)
	}

	ideas, err := s.Drafts.List(ctx, "u1", "ideas", storage.ListOptions{})
	if err != nil || len(ideas) != 1 {
		t.Errorf("List(ideas) = %d, %v", len(ideas), err)
	}

	if _, err := s.Drafts.Save(ctx, model.Draft{Title: "x", Format: "yaml"}, "u1"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("неизвестный формат: ожидалась ErrInvalidArgument, получено %v", err)
	}
}

func TestBackups_CSV(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	res, err := s.Backups.Create(ctx, model.BackupRequest{
		Type:   "orders",
		Format: "csv",
		Records: []map[string]any{
			{"id": "o1", "total": 12.5},
			{"id": "o2", "items": []string{"a", "b"}, "paid": true},
		},
	}, "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rc, info, err := s.Client().Download(ctx, BucketBackups, res.Key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()
	if info.ContentType != "text/csv" {
		t.Errorf("ContentType = %q", info.ContentType)
	}

	rows, err := csv.NewReader(rc).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	want := [][]string{
		{"id", "items", "paid", "total"},
		{"o1", "", "", "12.5"},
		{"o2", `["a","b"]`, "true", ""},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("csv = %v, ожидалось %v", rows, want)
	}

	list, err := s.Backups.List(ctx, "2026-10-19", storage.ListOptions{})
	if err != nil || len(list) != 1 {
		t.Errorf("List = %d, %v", len(list), err)
	}

	if _, err := s.Backups.Create(ctx, model.BackupRequest{Type: "x", Format: "xml"}, "admin"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("неизвестный формат: ожидалась ErrInvalidArgument, получено %v", err)
	}
}

func TestLogs_ListByLevel(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, lvl := range []string{"info", "error", "error", ""} {
		if _, err := s.Logs.Write(ctx, model.SystemLog{Level: lvl, Message: "m", Source: "test"}, "system"); err != nil {
			t.Fatalf("Write(%q): %v", lvl, err)
		}
	}

	errorsOnly, err := s.Logs.List(ctx, "2026-10-19", "error", storage.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(errorsOnly) != 2 {
		t.Errorf("ожидалось 2 записи error, получено %d", len(errorsOnly))
	}

	all, err := s.Logs.List(ctx, "", "", storage.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ожидалось 4 записи за сегодня, получено %d", len(all))
	}

	entry, err := s.Logs.Read(ctx, all[0].Key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if entry.Level != "info" || entry.Timestamp.IsZero() {
		t.Errorf("Read = %+v", entry)
	}

	if _, err := s.Logs.Write(ctx, model.SystemLog{Level: "fatal"}, "system"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("неизвестный уровень: ожидалась ErrInvalidArgument, получено %v", err)
	}
}

func TestEmails_DeleteAndExpired(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var keys []string
	for i := 0; i < 3; i++ {
		res, err := s.Emails.Upload(ctx, model.EmailLog{To: "a@b.c", Subject: "s"}, "u1")
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		keys = append(keys, res.Key)
	}

	got, err := s.Emails.Download(ctx, keys[0])
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got.ID == "" || got.Timestamp.IsZero() {
		t.Errorf("ID и Timestamp должны заполняться: %+v", got)
	}

	// Первые два письма записаны в baseTime+0ms и +1ms по часам memstore
	expired, err := s.Emails.Expired(ctx, baseTime.Add(2*time.Millisecond))
	if err != nil {
		t.Fatalf("Expired: %v", err)
	}
	if len(expired) != 2 {
		t.Fatalf("ожидалось 2 устаревших письма, получено %v", expired)
	}

	if err := s.Emails.Delete(ctx, expired...); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	left, err := s.Emails.List(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(left) != 1 || left[0].Key != keys[2] {
		t.Errorf("после удаления осталось %+v", left)
	}

	if _, err := s.Emails.Download(ctx, keys[0]); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("удалённое письмо: ожидалась ErrNotFound, получено %v", err)
	}
}

func TestLegal_Latest(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Legal.Upload(ctx, file("privacy.html", "<p>1</p>"), "privacy", "1.0", "admin"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := s.Legal.Upload(ctx, file("privacy.html", "<p>2</p>"), "privacy", "2.0", "admin"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	latest, err := s.Legal.Latest(ctx, "privacy")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !strings.HasPrefix(latest.Key, "privacy/2.0/") {
		t.Errorf("Latest = %s, ожидалась версия 2.0", latest.Key)
	}
	if latest.URL == "" || latest.Metadata["version"] != "2.0" {
		t.Errorf("Latest без URL или метаданных: %+v", latest)
	}

	v1, err := s.Legal.List(ctx, "privacy", "1.0", storage.ListOptions{})
	if err != nil || len(v1) != 1 {
		t.Errorf("List(1.0) = %d, %v", len(v1), err)
	}

	if _, err := s.Legal.Latest(ctx, "refund"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
}

func TestProducts_RequireProductID(t *testing.T) {
	s, spy := newTestStore(t)
	if _, err := s.Products.UploadAsset(context.Background(), file("a.png", "x"), "", "", "admin"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ожидалась ErrInvalidArgument, получено %v", err)
	}
	if spy.Calls() != 0 {
		t.Errorf("backend вызван %d раз", spy.Calls())
	}
}

func TestContentTypeDetection(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	res, err := s.Attachments.Upload(ctx, file("a.pdf", "%PDF-1.4"), "u1")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	rc, info, err := s.Client().Download(ctx, BucketAttachments, res.Key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	rc.Close()
	if info.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, ожидалось application/pdf", info.ContentType)
	}

	res, err = s.Products.UploadAsset(ctx, file("blob.unknownext", "plain text"), "p1", "files", "admin")
	if err != nil {
		t.Fatalf("UploadAsset: %v", err)
	}
	rc, info, err = s.Client().Download(ctx, BucketProducts, res.Key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "plain text" {
		t.Errorf("содержимое после определения типа = %q", data)
	}
	if !strings.HasPrefix(info.ContentType, "text/plain") {
		t.Errorf("ContentType = %q, ожидался text/plain", info.ContentType)
	}
}

func TestStore_Download(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	res, err := s.ChatExports.Export(ctx, model.ChatExport{ChatID: "c1"}, "u1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	rc, _, err := s.Download(ctx, BucketChatExports, res.Key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	var got model.ChatExport
	if err := json.NewDecoder(rc).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rc.Close()
	if got.ChatID != "c1" || got.Messages == nil {
		t.Errorf("экспорт = %+v", got)
	}

	if _, _, err := s.Download(ctx, "secrets", "x"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("неизвестный бакет: ожидалась ErrInvalidArgument, получено %v", err)
	}
}

// TestEmails_NoRecipient — запись журнала без получателя сохраняется как есть.
func TestEmails_NoRecipient(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	res, err := s.Emails.Upload(ctx, model.EmailLog{Subject: "draft", Type: "system"}, "u1")
	if err != nil {
		t.Fatalf("Emails.Upload: %v", err)
	}
	got, err := s.Emails.Download(ctx, res.Key)
	if err != nil {
		t.Fatalf("Emails.Download: %v", err)
	}
	if got.To != "" || got.Subject != "draft" || got.ID == "" {
		t.Errorf("письмо = %+v", got)
	}
}
