package port

import (
	"image"

	"calorie-vision/internal/domain/entity"
)

// ImageStore чтение и запись изображений
type ImageStore interface {
	// Load декодирует изображение с диска, ошибка ErrInvalidImage если не вышло
	Load(path string) (image.Image, error)

	// Save записывает изображение, перезаписывая существующий файл
	Save(img image.Image, path string) error
}

// Annotator рисует результат оценки поверх изображения
type Annotator interface {
	// Annotate возвращает цветную копию изображения с рамками и подписями
	Annotate(result *entity.EstimationResult, img image.Image) (image.Image, error)
}
