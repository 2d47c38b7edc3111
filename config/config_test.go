package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DETECTOR_BACKEND", "DNN_INPUT_SIZE", "DNN_CONFIDENCE", "DNN_NMS", "OUTPUT_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendDNN, cfg.DetectorBackend)
	require.Equal(t, 640, cfg.DNNInputSize)
	require.Equal(t, 0.25, cfg.DNNConfidence)
	require.Equal(t, "outputs", cfg.OutputDir)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DETECTOR_BACKEND", "ollama")
	t.Setenv("OLLAMA_MODEL", "llava:13b")
	t.Setenv("DNN_INPUT_SIZE", "320")
	t.Setenv("DNN_CONFIDENCE", "0.4")
	t.Setenv("OUTPUT_DIR", "/tmp/calories")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendOllama, cfg.DetectorBackend)
	require.Equal(t, "llava:13b", cfg.OllamaModel)
	require.Equal(t, 320, cfg.DNNInputSize)
	require.Equal(t, 0.4, cfg.DNNConfidence)
	require.Equal(t, "/tmp/calories", cfg.OutputDir)
}

func TestLoad_BadNumberFallsBackToDefault(t *testing.T) {
	t.Setenv("DETECTOR_BACKEND", "")
	t.Setenv("DNN_INPUT_SIZE", "large")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 640, cfg.DNNInputSize)
}

func TestValidate(t *testing.T) {
	t.Setenv("DETECTOR_BACKEND", "tflite")
	_, err := Load()
	require.Error(t, err)

	cfg := &Config{DetectorBackend: BackendDNN, DNNInputSize: 641, OutputDir: "out"}
	require.Error(t, cfg.Validate())

	cfg = &Config{DetectorBackend: BackendDNN, DNNInputSize: 640, DNNConfidence: 1.5, OutputDir: "out"}
	require.Error(t, cfg.Validate())

	cfg = &Config{DetectorBackend: BackendOllama, DNNInputSize: 640, DNNConfidence: 0.25, DNNNMS: 0.45}
	require.Error(t, cfg.Validate())

	cfg.OutputDir = "out"
	require.NoError(t, cfg.Validate())
}
