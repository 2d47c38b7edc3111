package vision

// Options параметры DNN-детектора
type Options struct {
	ModelPath     string  // путь к ONNX-модели (экспорт YOLOv8)
	InputSize     int     // сторона квадратного входа сети
	ConfThreshold float32 // порог уверенности модели
	NMSThreshold  float32 // порог IoU для подавления немаксимумов
}

// DefaultOptions значения по умолчанию для YOLOv8
func DefaultOptions(modelPath string) Options {
	return Options{
		ModelPath:     modelPath,
		InputSize:     640,
		ConfThreshold: 0.25,
		NMSThreshold:  0.45,
	}
}
