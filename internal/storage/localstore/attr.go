// attr.go — чтение и запись файлов описания объектов (attr).
// Каждый объект имеет сопутствующий attrs/{bucket}/{key}.json,
// который является единственным источником истины для метаданных.
// Все операции записи выполняются атомарно: temp → fsync → rename.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
)

// attrSuffix — суффикс файла описания.
const attrSuffix = ".json"

// maxAttrFileSize — максимальный допустимый размер attr-файла (16 КБ).
const maxAttrFileSize = 16 << 10

// writeAttr атомарно записывает описание объекта.
func writeAttr(path string, info *storage.ObjectInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации описания: %w", err)
	}

	if len(data) > maxAttrFileSize {
		return fmt.Errorf("размер описания (%d байт) превышает максимум (%d байт)", len(data), maxAttrFileSize)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

// readAttr читает и десериализует описание объекта.
func readAttr(path string) (*storage.ObjectInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения описания %s: %w", path, err)
	}

	var info storage.ObjectInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("ошибка десериализации описания %s: %w", path, err)
	}

	return &info, nil
}

// removeIfExists удаляет файл; отсутствие файла не считается ошибкой.
func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления %s: %w", path, err)
	}
	return nil
}
