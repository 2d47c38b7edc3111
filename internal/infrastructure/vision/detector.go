//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"calorie-vision/internal/domain/entity"
)

// DNNDetector запускает ONNX-модель YOLOv8 через OpenCV DNN.
type DNNDetector struct {
	mu     sync.Mutex // gocv.Net нельзя гонять из нескольких горутин
	net    gocv.Net
	opts   Options
	labels Labels
	logger *zap.Logger
}

// NewDNNDetector загружает сеть и выставляет CPU-бэкенд.
func NewDNNDetector(opts Options, labels Labels, logger *zap.Logger) (*DNNDetector, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s: %w", opts.ModelPath, err)
	}

	net := gocv.ReadNetFromONNX(opts.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network %s", opts.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}

	logger.Info("detection network initialized",
		zap.String("model", opts.ModelPath),
		zap.Int("labels", len(labels)),
		zap.Int("input_size", opts.InputSize),
	)

	return &DNNDetector{net: net, opts: opts, labels: labels, logger: logger}, nil
}

// Infer прогоняет сеть и возвращает рамки после NMS. Порог уверенности задаёт модель (opts),
// оценщик ничего дополнительно не фильтрует.
func (d *DNNDetector) Infer(ctx context.Context, img image.Image) ([]entity.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: convert image: %v", entity.ErrDetector, err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrDetector)
	}

	size := d.opts.InputSize
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	d.mu.Unlock()
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("%w: unexpected output dims %v", entity.ErrDetector, dims)
	}
	attrs, n := dims[1], dims[2]
	if nc := attrs - 4; nc != len(d.labels) {
		d.logger.Warn("model class count differs from labels", zap.Int("model", nc), zap.Int("labels", len(d.labels)))
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%w: read output: %v", entity.ErrDetector, err)
	}

	bounds := image.Rect(0, 0, mat.Cols(), mat.Rows())
	scaleX := float64(mat.Cols()) / float64(size)
	scaleY := float64(mat.Rows()) / float64(size)
	cands, err := decodeYOLO(data, attrs, n, scaleX, scaleY, bounds, d.opts.ConfThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDetector, err)
	}
	if len(cands) == 0 {
		return []entity.RawDetection{}, nil
	}

	rects := make([]image.Rectangle, len(cands))
	scores := make([]float32, len(cands))
	for i, c := range cands {
		rects[i] = c.Rect
		scores[i] = c.Score
	}
	keep := gocv.NMSBoxes(rects, scores, d.opts.ConfThreshold, d.opts.NMSThreshold)

	offset := img.Bounds().Min
	detections := make([]entity.RawDetection, 0, len(keep))
	for _, idx := range keep {
		c := cands[idx]
		detections = append(detections, entity.RawDetection{
			Box:        entity.BoxFromRect(c.Rect.Add(offset)),
			ClassIndex: c.ClassID,
			Confidence: float64(c.Score),
		})
	}

	d.logger.Debug("inference done", zap.Int("candidates", len(cands)), zap.Int("detections", len(detections)))
	return detections, nil
}

// Label возвращает метку класса
func (d *DNNDetector) Label(classIndex int) (string, error) {
	return d.labels.Label(classIndex)
}

// Close освобождает сеть
func (d *DNNDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
