package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/domain/port"
)

var (
	boxColor   = color.RGBA{G: 255, A: 255}
	totalColor = color.RGBA{R: 255, A: 255}
)

// Annotator рисует рамки, подписи и итог калорий
type Annotator struct {
	font      *truetype.Font
	LabelSize float64 // размер шрифта подписи объекта
	TotalSize float64 // размер шрифта итоговой строки
	LineWidth float64
}

// NewAnnotator создаёт аннотатор со встроенным шрифтом Go Regular
func NewAnnotator() (*Annotator, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Annotator{
		font:      f,
		LabelSize: 20,
		TotalSize: 24,
		LineWidth: 2,
	}, nil
}

// Annotate возвращает цветную RGBA-копию изображения: зелёные рамки с подписью
// "<класс>: <калории> cal" над каждой и красный итог в левом верхнем углу.
// Исходное изображение не меняется.
func (a *Annotator) Annotate(result *entity.EstimationResult, img image.Image) (image.Image, error) {
	if result == nil {
		return nil, errors.New("nil estimation result")
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}

	dc := gg.NewContextForImage(img)
	origin := img.Bounds().Min

	labelFace := truetype.NewFace(a.font, &truetype.Options{Size: a.LabelSize})
	defer labelFace.Close()
	dc.SetFontFace(labelFace)
	for _, d := range result.Detections {
		// NewContextForImage рисует изображение от нуля, сдвигаем рамки если Bounds().Min != 0
		r := d.Box.Rect().Sub(origin)

		dc.SetColor(boxColor)
		dc.SetLineWidth(a.LineWidth)
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.Stroke()

		dc.DrawString(LabelText(d), float64(r.Min.X), float64(r.Min.Y-10))
	}

	totalFace := truetype.NewFace(a.font, &truetype.Options{Size: a.TotalSize})
	defer totalFace.Close()
	dc.SetFontFace(totalFace)
	dc.SetColor(totalColor)
	dc.DrawString(TotalText(result), 10, 30)

	return dc.Image(), nil
}

// LabelText подпись объекта на картинке
func LabelText(d entity.Detection) string {
	return fmt.Sprintf("%s: %s cal", d.ClassName, formatCalories(d.Calories))
}

// TotalText строка итога
func TotalText(result *entity.EstimationResult) string {
	return fmt.Sprintf("Total Calories: %.2f", result.TotalCalories)
}

// formatCalories печатает число без лишних нулей, но целые значения оставляет с ".0" (260.0).
func formatCalories(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Проверка реализации интерфейса
var _ port.Annotator = (*Annotator)(nil)
