package entity

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// migrationColumns извлекает имена колонок из CREATE TABLE в миграции
func migrationColumns(t *testing.T, path string) map[string]bool {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "Файл миграции должен быть доступен")

	columns := make(map[string]bool)
	inTable := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "CREATE TABLE") {
			inTable = true
			continue
		}
		if !inTable || line == "" {
			continue
		}
		if strings.HasPrefix(line, ")") {
			break
		}
		name := strings.Fields(line)[0]
		// Пропускаем табличные ограничения
		if name == "CONSTRAINT" || name == "CHECK" || name == "PRIMARY" || name == "UNIQUE" {
			continue
		}
		columns[name] = true
	}
	require.NotEmpty(t, columns, "Из миграции должна извлечься хотя бы одна колонка")
	return columns
}

func TestQuestion_ColumnsMatchMigration(t *testing.T) {
	// Arrange: колонки, которые реально создает миграция
	columns := migrationColumns(t, "../../../migrations/000001_create_questions.up.sql")

	// Act: колонки, в которые GORM отобразит поля модели
	parsed, err := schema.Parse(&Question{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	// Assert: каждое поле модели попадает в существующую колонку
	for _, field := range parsed.Fields {
		assert.True(t, columns[field.DBName],
			"Поле %s отображается в колонку %q, которой нет в миграции", field.Name, field.DBName)
	}

	// И ключевые колонки отображаются именно туда, куда пишет SQL-слой
	byColumn := make(map[string]string)
	for _, field := range parsed.Fields {
		byColumn[field.DBName] = field.Name
	}
	assert.Equal(t, "Text", byColumn["question"], "Текст вопроса живет в колонке question")
	assert.Equal(t, "CorrectOption", byColumn["ans"], "Правильный ответ живет в колонке ans")
}
