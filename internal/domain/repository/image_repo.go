package repository

import "context"

// ImageStore определяет контракт внешнего хранилища изображений вопросов.
// Ядро хранит только непрозрачный путь, возвращённый Upload; превращение
// пути в URL для отрисовки — забота клиента.
type ImageStore interface {
	// Upload сохраняет изображение и возвращает путь для pic_path
	Upload(ctx context.Context, fileName string, data []byte) (string, error)

	// Delete удаляет ранее загруженное изображение по его pic_path
	Delete(ctx context.Context, picPath string) error
}
