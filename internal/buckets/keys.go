// keys.go — построение ключей объектов: санитизация имён, timestamp,
// проверка расширений по allow-list бакета.
package buckets

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"
)

// timestampLayout — ISO-8601 в UTC с миллисекундами.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrFileTypeNotAllowed — расширение файла не входит в allow-list бакета.
var ErrFileTypeNotAllowed = errors.New("file type not allowed")

// FileTypeError — отказ по расширению файла. Возвращается до обращения к backend-у.
type FileTypeError struct {
	Name    string
	Ext     string
	Allowed []string
}

func (e *FileTypeError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("file type %s is not allowed for %q, allowed: %s",
		ext, e.Name, strings.Join(e.Allowed, ", "))
}

// Is позволяет errors.Is(err, ErrFileTypeNotAllowed).
func (e *FileTypeError) Is(target error) bool {
	return target == ErrFileTypeNotAllowed
}

// Allow-list расширений по бакетам.
var (
	attachmentTypes   = []string{"pdf", "jpg", "png", "doc", "docx", "txt", "zip"}
	documentTypes     = []string{"pdf", "doc", "docx", "txt", "rtf", "odt"}
	legalTypes        = []string{"pdf", "html", "txt", "md"}
	profileImageTypes = []string{"jpg", "png", "gif", "webp"}
)

// Sanitize заменяет каждый символ вне [A-Za-z0-9.-] на "_".
// Многобайтовый символ заменяется одним "_". Пустое имя становится "file".
func Sanitize(name string) string {
	if name == "" {
		return "file"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Timestamp форматирует момент t в UTC как ISO-8601 с миллисекундами,
// заменяя ":" и "." на "-": 2026-10-19T12-04-05-123Z.
// Строки одного формата сортируются лексически по времени.
func Timestamp(t time.Time) string {
	s := t.UTC().Format(timestampLayout)
	return strings.NewReplacer(":", "-", ".", "-").Replace(s)
}

// DatePart возвращает дату YYYY-MM-DD (UTC).
func DatePart(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Extension возвращает часть имени после последней точки в нижнем регистре.
func Extension(name string) string {
	base := baseName(name)
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// checkExtension проверяет расширение по allow-list без учёта регистра.
func checkExtension(name string, allowed []string) error {
	ext := Extension(name)
	if ext == "" || !slices.Contains(allowed, ext) {
		return &FileTypeError{Name: name, Ext: ext, Allowed: allowed}
	}
	return nil
}

// segment санитизирует классификационный сегмент ключа (category, type,
// version ...). Пустое значение заменяется на def, сегменты из одних точек
// недопустимы в ключе и заменяются на "_".
func segment(value, def string) string {
	if value == "" {
		value = def
	}
	s := Sanitize(value)
	if strings.Trim(s, ".") == "" {
		return strings.Repeat("_", len(s))
	}
	return s
}

// requireSegment — как segment, но пустое значение считается ошибкой.
func requireSegment(field, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	return segment(value, ""), nil
}

// fileKeyName — "<ts>-<sanitized-name>" для загружаемых файлов.
func fileKeyName(ts, name string) string {
	return ts + "-" + Sanitize(baseName(name))
}

// baseName отбрасывает путь клиента (в том числе windows-разделители).
func baseName(name string) string {
	b := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if b == "." || b == "/" {
		return ""
	}
	return b
}

// trimExt возвращает имя без последнего расширения.
func trimExt(name string) string {
	base := baseName(name)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
