package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись, сессия или ресурс не найдены.
	// Не фатальна: вызывающая сторона перезапускает соответствующий поток.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	// Запрос отклоняется до обращения к репозиторию или кешу.
	ErrValidation = errors.New("validation failed")

	// ErrBackendUnavailable используется, когда хранилище недоступно или
	// запрос к нему превысил таймаут. Ретраи — забота вызывающей стороны.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrImageStore используется для ошибок внешнего хранилища изображений.
	ErrImageStore = errors.New("image store operation failed")
)
