package port

import (
	"context"
	"image"

	"calorie-vision/internal/domain/entity"
)

// ObjectDetector интерфейс модели детекции объектов
type ObjectDetector interface {
	// Infer прогоняет модель по изображению и возвращает все найденные рамки
	Infer(ctx context.Context, img image.Image) ([]entity.RawDetection, error)

	// Label возвращает имя класса по индексу из таблицы меток модели
	Label(classIndex int) (string, error)
}
