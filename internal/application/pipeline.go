package app

import (
	"context"
	"image"
	"path/filepath"

	"go.uber.org/zap"

	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/domain/port"
)

// ResultFileName имя файла с размеченным изображением, перезаписывается при каждом вызове
const ResultFileName = "result_with_calories.jpg"

// PipelineOutput результат оценки и размеченная картинка
type PipelineOutput struct {
	Result    *entity.EstimationResult
	Annotated image.Image // nil, если разметка не запрашивалась
	SavedPath string      // пусто, если файл не записан
}

// Pipeline связывает оценку, разметку и запись результата на диск
type Pipeline struct {
	estimator  *NutritionEstimator
	annotator  port.Annotator
	images     port.ImageStore
	outputPath string
	logger     *zap.Logger
}

// NewPipeline создаёт конвейер, размеченное изображение пишется в outputDir/result_with_calories.jpg
func NewPipeline(estimator *NutritionEstimator, annotator port.Annotator, images port.ImageStore, outputDir string, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		estimator:  estimator,
		annotator:  annotator,
		images:     images,
		outputPath: filepath.Join(outputDir, ResultFileName),
		logger:     logger,
	}
}

// OutputPath путь, куда пишется размеченное изображение
func (p *Pipeline) OutputPath() string {
	return p.outputPath
}

// Run оценивает файл. При visualize=false разметка и запись на диск пропускаются.
func (p *Pipeline) Run(ctx context.Context, imagePath string, visualize bool) (*PipelineOutput, error) {
	result, img, err := p.estimator.Estimate(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	return p.finish(result, img, visualize)
}

// RunImage то же, что Run, для уже декодированного изображения
func (p *Pipeline) RunImage(ctx context.Context, img image.Image, visualize bool) (*PipelineOutput, error) {
	result, err := p.estimator.EstimateImage(ctx, img)
	if err != nil {
		return nil, err
	}
	return p.finish(result, img, visualize)
}

func (p *Pipeline) finish(result *entity.EstimationResult, img image.Image, visualize bool) (*PipelineOutput, error) {
	out := &PipelineOutput{Result: result}
	if !visualize {
		return out, nil
	}

	annotated, err := p.annotator.Annotate(result, img)
	if err != nil {
		return nil, err
	}
	out.Annotated = annotated

	// Запись на диск побочный эффект: ошибка не отменяет результат
	if err := p.images.Save(annotated, p.outputPath); err != nil {
		p.logger.Warn("failed to save annotated image", zap.String("path", p.outputPath), zap.Error(err))
		return out, nil
	}
	out.SavedPath = p.outputPath
	return out, nil
}
