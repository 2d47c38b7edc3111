//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"calorie-vision/internal/domain/entity"
)

// DNNDetector заглушка детектора (сборка без OpenCV).
type DNNDetector struct {
	opts   Options
	labels Labels
}

// NewDNNDetector создаёт детектор-заглушку (без OpenCV).
func NewDNNDetector(opts Options, labels Labels, logger *zap.Logger) (*DNNDetector, error) {
	logger.Warn("built without gocv tag, dnn detector is disabled")
	return &DNNDetector{opts: opts, labels: labels}, nil
}

// Infer возвращает ошибку, если сборка без тега gocv.
func (d *DNNDetector) Infer(ctx context.Context, img image.Image) ([]entity.RawDetection, error) {
	_ = ctx
	_ = img
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrDetector)
}

// Label возвращает метку класса
func (d *DNNDetector) Label(classIndex int) (string, error) {
	return d.labels.Label(classIndex)
}

// Close ничего не делает
func (d *DNNDetector) Close() error {
	return nil
}
