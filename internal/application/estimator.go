package app

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/domain/port"
)

// Константы грубой оценки веса по площади рамки
const (
	PixelsPerGram  = 500.0 // калибровочный коэффициент: пикселей площади на грамм
	MinWeightGrams = 10.0
	MaxWeightGrams = 500.0
)

// NutritionEstimator находит объекты и оценивает их вес и калорийность
type NutritionEstimator struct {
	detector port.ObjectDetector
	table    port.CalorieTable
	images   port.ImageStore
	logger   *zap.Logger
}

// NewNutritionEstimator создаёт оценщик. Таблица калорийности передаётся явно
// и дальше только читается.
func NewNutritionEstimator(detector port.ObjectDetector, table port.CalorieTable, images port.ImageStore, logger *zap.Logger) *NutritionEstimator {
	return &NutritionEstimator{
		detector: detector,
		table:    table,
		images:   images,
		logger:   logger,
	}
}

// Estimate загружает изображение и оценивает его. Возвращает декодированный исходник,
// чтобы его можно было разметить без повторного чтения с диска.
func (e *NutritionEstimator) Estimate(ctx context.Context, imagePath string) (*entity.EstimationResult, image.Image, error) {
	img, err := e.images.Load(imagePath)
	if err != nil {
		return nil, nil, err
	}

	result, err := e.EstimateImage(ctx, img)
	if err != nil {
		return nil, nil, err
	}
	return result, img, nil
}

// EstimateImage прогоняет модель и считает вес и калории для каждой рамки.
// Все рамки модели обрабатываются без дополнительной фильтрации.
// Любая ошибка прерывает оценку целиком: частичного результата нет.
func (e *NutritionEstimator) EstimateImage(ctx context.Context, img image.Image) (*entity.EstimationResult, error) {
	if e.detector == nil {
		return nil, fmt.Errorf("%w: detector is not configured", entity.ErrDetector)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrInvalidImage)
	}

	raw, err := e.detector.Infer(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	result := &entity.EstimationResult{
		Detections: make([]entity.Detection, 0, len(raw)),
	}
	for _, r := range raw {
		d, err := e.enrich(img, r)
		if err != nil {
			return nil, err
		}
		result.Detections = append(result.Detections, d)
		result.TotalCalories += d.Calories
	}

	e.logger.Info("estimation done",
		zap.Int("detections", len(result.Detections)),
		zap.Float64("total_calories", result.TotalCalories),
	)
	return result, nil
}

// enrich превращает сырую рамку в Detection с весом и калориями
func (e *NutritionEstimator) enrich(img image.Image, r entity.RawDetection) (entity.Detection, error) {
	name, err := e.detector.Label(r.ClassIndex)
	if err != nil {
		return entity.Detection{}, fmt.Errorf("resolve label %d: %w", r.ClassIndex, err)
	}

	kcalPer100g, err := e.table.Lookup(name)
	if err != nil {
		return entity.Detection{}, err
	}

	weight := Round2(EstimateWeight(img, r.Box))
	return entity.Detection{
		ClassName:            name,
		Confidence:           r.Confidence,
		Box:                  r.Box,
		EstimatedWeightGrams: weight,
		Calories:             Round2(kcalPer100g / 100 * weight),
	}, nil
}

// EstimateWeight оценивает вес объекта по площади вырезанной рамки: area/500 в пределах [10, 500] г.
// Рамка обрезается по границам изображения, поэтому вылезающая за край часть не считается.
func EstimateWeight(img image.Image, box entity.BoundingBox) float64 {
	crop := imaging.Crop(img, box.Rect())
	return WeightFromArea(entity.BoxFromRect(crop.Bounds()).Area())
}

// WeightFromArea линейная оценка веса по площади в пикселях
func WeightFromArea(area int) float64 {
	return clamp(float64(area)/PixelsPerGram, MinWeightGrams, MaxWeightGrams)
}

// Round2 округляет до двух знаков после запятой
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
