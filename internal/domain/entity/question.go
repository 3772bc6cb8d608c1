package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Количество вариантов ответа у вопроса — фиксировано
const OptionCount = 4

// Типы подачи вопроса
const (
	MediaTypeText    = "TXT"
	MediaTypePicture = "PIC"
)

// Категории вопросов (quest_type)
const (
	QuestTypeTopik   = "Topik"
	QuestTypeFood    = "Food"
	QuestTypeCulture = "Culture"
)

// QuestTypes перечисляет допустимые категории вопросов
var QuestTypes = []string{QuestTypeTopik, QuestTypeFood, QuestTypeCulture}

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос викторины.
// Запись неизменяема после создания, кроме полей, обновляемых админкой
// (текст, варианты, правильный ответ, категория).
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Text          string      `gorm:"column:question;size:500;not null" json:"question"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"column:ans;not null" json:"ans"` // 1-based индекс правильного варианта
	QuestType     string      `gorm:"size:20;not null;index" json:"quest_type"`
	MediaType     string      `gorm:"size:10;not null;default:'TXT'" json:"type"`
	PicPath       string      `gorm:"size:255;not null;default:''" json:"pic_path"` // Непрозрачная ссылка на внешнее изображение
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным.
// selectedOption — 1-based, как и CorrectOption.
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectOption
}

// IsValidOption проверяет, является ли выбранный вариант допустимым (1..4)
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 1 && selectedOption <= len(q.Options)
}

// IsPicture сообщает, что вопрос сопровождается изображением
func (q *Question) IsPicture() bool {
	return q.MediaType == MediaTypePicture
}

// IsValidQuestType проверяет принадлежность категории к допустимому набору
func IsValidQuestType(questType string) bool {
	for _, t := range QuestTypes {
		if t == questType {
			return true
		}
	}
	return false
}

// Validate проверяет инварианты вопроса:
// ровно 4 непустых варианта, правильный ответ в диапазоне 1..4,
// допустимая категория и согласованность media-типа с pic_path
// (PIC ⇔ непустой pic_path).
func (q *Question) Validate() error {
	if q.Text == "" {
		return errors.New("question text is required")
	}
	if len(q.Options) != OptionCount {
		return errors.New("question must have exactly 4 options")
	}
	for _, opt := range q.Options {
		if opt == "" {
			return errors.New("question options must be non-empty")
		}
	}
	if q.CorrectOption < 1 || q.CorrectOption > OptionCount {
		return errors.New("correct option must be between 1 and 4")
	}
	if !IsValidQuestType(q.QuestType) {
		return errors.New("unknown quest type")
	}
	switch q.MediaType {
	case MediaTypeText:
		if q.PicPath != "" {
			return errors.New("text question must not carry a pic_path")
		}
	case MediaTypePicture:
		if q.PicPath == "" {
			return errors.New("picture question requires a pic_path")
		}
	default:
		return errors.New("unknown media type")
	}
	return nil
}
