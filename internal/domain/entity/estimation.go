package entity

// RawDetection сырой ответ модели: рамка, индекс класса и уверенность
type RawDetection struct {
	Box        BoundingBox
	ClassIndex int
	Confidence float64
}

// Detection найденный объект с оценкой веса и калорийности.
// Создаётся оценщиком и после этого не меняется.
type Detection struct {
	ClassName            string      `json:"class"`
	Confidence           float64     `json:"confidence"`
	Box                  BoundingBox `json:"bounding_box"`
	EstimatedWeightGrams float64     `json:"estimated_weight_g"`
	Calories             float64     `json:"calories"`
}

// EstimationResult итог оценки одного изображения.
type EstimationResult struct {
	TotalCalories float64     `json:"total_calories"` // сумма калорий всех объектов
	Detections    []Detection `json:"detections"`     // в порядке выдачи модели
}

// Empty сообщает, что на изображении ничего не найдено
func (r *EstimationResult) Empty() bool {
	return r == nil || len(r.Detections) == 0
}
