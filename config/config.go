package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Бэкенды детектора
const (
	BackendDNN    = "dnn"
	BackendOllama = "ollama"
)

type Config struct {
	TelegramToken  string
	CaloriesDBPath string
	OutputDir      string
	SampleImage    string
	LogLevel       string

	DetectorBackend string
	ModelPath       string
	LabelsPath      string
	DNNInputSize    int
	DNNConfidence   float64
	DNNNMS          float64

	OllamaURL   string
	OllamaModel string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		CaloriesDBPath: getEnv("CALORIES_DB_PATH", filepath.Join("data", "calories_database.json")),
		OutputDir:      getEnv("OUTPUT_DIR", "outputs"),
		SampleImage:    getEnv("SAMPLE_IMAGE", filepath.Join("data", "sample.jpg")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		DetectorBackend: getEnv("DETECTOR_BACKEND", BackendDNN),
		ModelPath:       getEnv("MODEL_PATH", filepath.Join("model", "best.onnx")),
		LabelsPath:      getEnv("LABELS_PATH", filepath.Join("data", "labels.txt")),
		DNNInputSize:    getEnvAsInt("DNN_INPUT_SIZE", 640),
		DNNConfidence:   getEnvAsFloat("DNN_CONFIDENCE", 0.25),
		DNNNMS:          getEnvAsFloat("DNN_NMS", 0.45),

		OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: getEnv("OLLAMA_MODEL", "llava"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	switch c.DetectorBackend {
	case BackendDNN, BackendOllama:
	default:
		return fmt.Errorf("DETECTOR_BACKEND must be %q or %q, got %q", BackendDNN, BackendOllama, c.DetectorBackend)
	}
	if c.DNNInputSize <= 0 || c.DNNInputSize%32 != 0 {
		return fmt.Errorf("DNN_INPUT_SIZE must be a positive multiple of 32, got %d", c.DNNInputSize)
	}
	if c.DNNConfidence < 0 || c.DNNConfidence > 1 {
		return fmt.Errorf("DNN_CONFIDENCE must be between 0 and 1, got %v", c.DNNConfidence)
	}
	if c.DNNNMS < 0 || c.DNNNMS > 1 {
		return fmt.Errorf("DNN_NMS must be between 0 and 1, got %v", c.DNNNMS)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
