package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() *Question {
	return &Question{
		ID:            1,
		Text:          "Как по-корейски 'привет'?",
		Options:       StringArray{"안녕하세요", "감사합니다", "사랑해요", "맛있어요"},
		CorrectOption: 1,
		QuestType:     QuestTypeTopik,
		MediaType:     MediaTypeText,
	}
}

func TestQuestion_IsCorrect(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		CorrectOption: 2, // 1-based
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(2), "IsCorrect должен вернуть true для правильного ответа")
	assert.False(t, question.IsCorrect(1), "IsCorrect должен вернуть false для неправильного ответа")
	assert.False(t, question.IsCorrect(0), "0 не является валидным выбором при 1-based нумерации")
	assert.False(t, question.IsCorrect(4), "IsCorrect должен вернуть false для неправильного ответа")
}

func TestQuestion_IsValidOption(t *testing.T) {
	// Arrange
	question := &Question{
		Options: StringArray{"A", "B", "C", "D"},
	}

	// Act & Assert: валидные опции (1-based)
	assert.True(t, question.IsValidOption(1), "Вариант 1 должен быть валидным")
	assert.True(t, question.IsValidOption(4), "Вариант 4 должен быть валидным")

	// Assert: невалидные опции
	assert.False(t, question.IsValidOption(0), "Вариант 0 должен быть невалидным при 1-based нумерации")
	assert.False(t, question.IsValidOption(-1), "Отрицательный вариант должен быть невалидным")
	assert.False(t, question.IsValidOption(5), "Вариант вне диапазона должен быть невалидным")
}

func TestQuestion_Validate_ValidTextQuestion(t *testing.T) {
	// Arrange
	question := validQuestion()

	// Act & Assert
	require.NoError(t, question.Validate(), "Корректный текстовый вопрос должен проходить валидацию")
}

func TestQuestion_Validate_ValidPictureQuestion(t *testing.T) {
	// Arrange
	question := validQuestion()
	question.MediaType = MediaTypePicture
	question.PicPath = "/quiz/1700000000000_kimchi.jpg"

	// Act & Assert
	require.NoError(t, question.Validate(), "Вопрос с изображением и pic_path должен проходить валидацию")
}

func TestQuestion_Validate_OptionCount(t *testing.T) {
	// Arrange: три варианта вместо четырёх
	question := validQuestion()
	question.Options = StringArray{"A", "B", "C"}

	// Act & Assert
	assert.Error(t, question.Validate(), "Вопрос не с четырьмя вариантами должен отклоняться")
}

func TestQuestion_Validate_EmptyOption(t *testing.T) {
	// Arrange
	question := validQuestion()
	question.Options = StringArray{"A", "", "C", "D"}

	// Act & Assert
	assert.Error(t, question.Validate(), "Пустой вариант ответа должен отклоняться")
}

func TestQuestion_Validate_AnswerOutOfRange(t *testing.T) {
	question := validQuestion()

	question.CorrectOption = 0
	assert.Error(t, question.Validate(), "ans=0 вне диапазона 1..4")

	question.CorrectOption = 5
	assert.Error(t, question.Validate(), "ans=5 вне диапазона 1..4")
}

func TestQuestion_Validate_UnknownQuestType(t *testing.T) {
	// Arrange: "All" — это отсутствие фильтра, а не категория
	question := validQuestion()
	question.QuestType = "All"

	// Act & Assert
	assert.Error(t, question.Validate(), "All не является категорией вопроса")
}

func TestQuestion_Validate_MediaTypeConsistency(t *testing.T) {
	// Текстовый вопрос с pic_path — нарушение инварианта
	question := validQuestion()
	question.PicPath = "/quiz/orphan.jpg"
	assert.Error(t, question.Validate(), "TXT вопрос не должен нести pic_path")

	// PIC без pic_path — тоже нарушение
	question = validQuestion()
	question.MediaType = MediaTypePicture
	question.PicPath = ""
	assert.Error(t, question.Validate(), "PIC вопрос обязан иметь pic_path")
}

func TestIsValidQuestType(t *testing.T) {
	for _, questType := range QuestTypes {
		assert.True(t, IsValidQuestType(questType), "Категория %s должна быть допустимой", questType)
	}
	assert.False(t, IsValidQuestType("All"), "All — маркер отсутствия фильтра, не категория")
	assert.False(t, IsValidQuestType(""), "Пустая категория недопустима")
}

func TestStringArray_ScanValue(t *testing.T) {
	// Arrange
	original := StringArray{"один", "два"}

	// Act
	value, err := original.Value()
	require.NoError(t, err)

	var restored StringArray
	err = restored.Scan(value)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestStringArray_ScanNil(t *testing.T) {
	var arr StringArray
	require.NoError(t, arr.Scan(nil))
	assert.Empty(t, arr, "NULL из базы должен давать пустой массив")
}
