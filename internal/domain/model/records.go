// Пакет model — доменные записи, сериализуемые в JSON-объекты бакетов.
// Структуры сериализуются как есть (camelCase), без обёрток: содержимое
// объекта в хранилище совпадает с JSON-представлением записи.
package model

import "time"

// EmailLog — запись об отправленном письме (бакет emails).
type EmailLog struct {
	// ID — идентификатор письма (uuid, если не задан вызывающим кодом)
	ID string `json:"id"`
	// To — адрес получателя
	To string `json:"to"`
	// From — адрес отправителя
	From string `json:"from,omitempty"`
	// Subject — тема письма
	Subject string `json:"subject"`
	// Body — тело письма (HTML или текст)
	Body string `json:"body,omitempty"`
	// Type — тип письма: order-confirmation, password-reset, newsletter ...
	Type string `json:"type"`
	// Status — статус доставки: sent, failed, queued
	Status string `json:"status,omitempty"`
	// Timestamp — время отправки
	Timestamp time.Time `json:"timestamp"`
	// Metadata — произвольные данные отправителя
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UserProfile — профиль пользователя (бакет user-profiles).
type UserProfile struct {
	UserID      string            `json:"userId"`
	DisplayName string            `json:"displayName"`
	Email       string            `json:"email,omitempty"`
	Bio         string            `json:"bio,omitempty"`
	AvatarURL   string            `json:"avatarUrl,omitempty"`
	CoverURL    string            `json:"coverUrl,omitempty"`
	Location    string            `json:"location,omitempty"`
	Website     string            `json:"website,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
}

// Уровни системного лога.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// SystemLog — запись системного журнала (бакет logs).
type SystemLog struct {
	// Level — уровень: debug, info, warn, error
	Level string `json:"level"`
	// Message — текст сообщения
	Message string `json:"message"`
	// Source — компонент-источник
	Source string `json:"source"`
	// Timestamp — время события (если нулевое, подставляется время записи)
	Timestamp time.Time `json:"timestamp"`
	// Context — дополнительные поля события
	Context map[string]string `json:"context,omitempty"`
}

// ChatMessage — сообщение в экспортируемом чате.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatExport — экспорт переписки с ассистентом (бакет chat-exports).
type ChatExport struct {
	ChatID     string        `json:"chatId"`
	Title      string        `json:"title,omitempty"`
	Messages   []ChatMessage `json:"messages"`
	ExportedAt time.Time     `json:"exportedAt"`
}

// NotificationSettings — настройки уведомлений пользователя.
type NotificationSettings struct {
	Email     bool `json:"email"`
	Push      bool `json:"push"`
	Marketing bool `json:"marketing"`
}

// PrivacySettings — настройки приватности профиля.
type PrivacySettings struct {
	ProfileVisible bool `json:"profileVisible"`
	ShowEmail      bool `json:"showEmail"`
}

// UserSettings — пользовательские настройки (бакет settings).
type UserSettings struct {
	Theme         string               `json:"theme"`
	Language      string               `json:"language"`
	Timezone      string               `json:"timezone,omitempty"`
	Notifications NotificationSettings `json:"notifications"`
	Privacy       PrivacySettings      `json:"privacy"`
	Preferences   map[string]string    `json:"preferences,omitempty"`
}

// Форматы черновика.
const (
	DraftFormatText = "text"
	DraftFormatJSON = "json"
)

// Draft — черновик контента (бакет drafts).
// Формат text хранится как text/plain (только Content), json — вся запись.
type Draft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category,omitempty"`
	Format   string   `json:"format"`
	Tags     []string `json:"tags,omitempty"`
}

// Форматы резервной копии.
const (
	BackupFormatJSON = "json"
	BackupFormatCSV  = "csv"
)

// BackupRequest — запрос на создание резервной копии (бакет backups).
type BackupRequest struct {
	// Type — тип данных: users, orders, products ...
	Type string `json:"type"`
	// Format — json или csv
	Format string `json:"format"`
	// Records — выгружаемые записи
	Records []map[string]any `json:"records"`
}
