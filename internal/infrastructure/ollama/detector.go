package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/domain/port"
)

const promptTemplate = `You are an object detector for fruits and vegetables.
Find every visible object of these classes: %s.
Return ONLY JSON of the form:
{"objects":[{"label":"<class>","confidence":0.0-1.0,"box":[x1,y1,x2,y2]}]}
Box coordinates are normalized to [0,1] relative to image width and height, (x1,y1) is the top-left corner.
Use labels exactly as listed. Return {"objects":[]} if nothing is found.`

// chatter часть api.Client, которую использует детектор
type chatter interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// Detector детектор на vision-модели Ollama. Таблица меток задаётся списком классов,
// модель просят возвращать только их.
type Detector struct {
	client  chatter
	model   string
	labels  []string
	index   map[string]int
	maxSide int
	timeout time.Duration
	logger  *zap.Logger
}

// NewDetector создаёт клиента Ollama по адресу сервера (путь вроде /api/chat отбрасывается).
func NewDetector(serverURL, model string, labels []string, logger *zap.Logger) (*Detector, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid ollama url: %q", serverURL)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

	return newDetector(api.NewClient(base, http.DefaultClient), model, labels, logger)
}

func newDetector(client chatter, model string, labels []string, logger *zap.Logger) (*Detector, error) {
	if len(labels) == 0 {
		logger.Warn("ollama detector has no class labels, every inference will fail until the calorie table is fixed")
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[strings.ToLower(l)] = i
	}
	return &Detector{
		client:  client,
		model:   model,
		labels:  labels,
		index:   index,
		maxSide: 1024,
		timeout: 5 * time.Minute,
		logger:  logger,
	}, nil
}

// Infer отправляет изображение модели и разбирает рамки из её ответа.
// Без меток (пустая таблица калорийности) спрашивать модель не о чем: каждый вызов возвращает ErrDetector.
func (d *Detector) Infer(ctx context.Context, img image.Image) ([]entity.RawDetection, error) {
	if len(d.labels) == 0 {
		return nil, fmt.Errorf("%w: no class labels, calorie table is empty", entity.ErrDetector)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	payload, err := d.encode(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDetector, err)
	}

	stream := false
	req := &api.ChatRequest{
		Model: d.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: fmt.Sprintf(promptTemplate, strings.Join(d.labels, ", ")),
			Images:  []api.ImageData{api.ImageData(payload)},
		}},
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: map[string]any{"temperature": 0},
	}

	var content strings.Builder
	err = d.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ollama chat: %v", entity.ErrDetector, err)
	}

	detections, skipped, err := parseObjects(content.String(), img.Bounds(), d.index)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDetector, err)
	}
	if len(skipped) > 0 {
		d.logger.Warn("ollama returned unknown labels", zap.Strings("labels", skipped))
	}

	d.logger.Debug("ollama inference done", zap.String("model", d.model), zap.Int("detections", len(detections)))
	return detections, nil
}

// Label возвращает метку класса
func (d *Detector) Label(classIndex int) (string, error) {
	if classIndex < 0 || classIndex >= len(d.labels) {
		return "", fmt.Errorf("%w: class index %d out of range [0,%d)", entity.ErrDetector, classIndex, len(d.labels))
	}
	return d.labels[classIndex], nil
}

// encode уменьшает большие фото и кодирует в JPEG. Координаты нормированные,
// поэтому масштаб на результат не влияет.
func (d *Detector) encode(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > d.maxSide || b.Dy() > d.maxSide {
		img = imaging.Fit(img, d.maxSide, d.maxSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Проверка реализации интерфейса
var _ port.ObjectDetector = (*Detector)(nil)
