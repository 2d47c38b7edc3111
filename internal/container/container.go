package container

import (
	"fmt"

	"go.uber.org/zap"

	"calorie-vision/config"
	app "calorie-vision/internal/application"
	"calorie-vision/internal/domain/port"
	"calorie-vision/internal/infrastructure/caloriedb"
	"calorie-vision/internal/infrastructure/imagefile"
	"calorie-vision/internal/infrastructure/ollama"
	"calorie-vision/internal/infrastructure/render"
	"calorie-vision/internal/infrastructure/vision"
)

type Container struct {
	SessionService *app.SessionService
	Pipeline       *app.Pipeline
	Table          *caloriedb.Table
	Images         *imagefile.Store
}

func New(sessions port.SessionRepository, detector port.ObjectDetector, table *caloriedb.Table, outputDir string, logger *zap.Logger) (*Container, error) {
	annotator, err := render.NewAnnotator()
	if err != nil {
		return nil, err
	}

	images := imagefile.NewStore()
	estimator := app.NewNutritionEstimator(detector, table, images, logger.Named("estimator"))
	pipeline := app.NewPipeline(estimator, annotator, images, outputDir, logger.Named("pipeline"))

	return &Container{
		SessionService: app.NewSessionService(sessions),
		Pipeline:       pipeline,
		Table:          table,
		Images:         images,
	}, nil
}

// LoadCalorieTable читает таблицу калорийности. Ошибка чтения не фатальна:
// пишем предупреждение и работаем с пустой таблицей.
func LoadCalorieTable(path string, logger *zap.Logger) *caloriedb.Table {
	table, err := caloriedb.Load(path)
	if err != nil {
		logger.Warn("calorie table is not loaded, continuing with an empty table", zap.Error(err))
		return table
	}
	logger.Info("calorie table loaded", zap.String("path", path), zap.Int("classes", table.Len()))
	return table
}

// NewDetector выбирает детектор по конфигурации. Вторым значением возвращается функция,
// освобождающая ресурсы модели.
func NewDetector(cfg *config.Config, table *caloriedb.Table, logger *zap.Logger) (port.ObjectDetector, func() error, error) {
	noop := func() error { return nil }

	switch cfg.DetectorBackend {
	case config.BackendOllama:
		d, err := ollama.NewDetector(cfg.OllamaURL, cfg.OllamaModel, table.Names(), logger.Named("ollama"))
		if err != nil {
			return nil, noop, err
		}
		return d, noop, nil

	case config.BackendDNN:
		labels, err := vision.LoadLabels(cfg.LabelsPath)
		if err != nil {
			return nil, noop, err
		}
		opts := vision.DefaultOptions(cfg.ModelPath)
		opts.InputSize = cfg.DNNInputSize
		opts.ConfThreshold = float32(cfg.DNNConfidence)
		opts.NMSThreshold = float32(cfg.DNNNMS)

		d, err := vision.NewDNNDetector(opts, labels, logger.Named("dnn"))
		if err != nil {
			return nil, noop, err
		}
		return d, d.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown detector backend %q", cfg.DetectorBackend)
	}
}
