package vision

import (
	"fmt"
	"image"
)

// candidate рамка до подавления немаксимумов
type candidate struct {
	Rect    image.Rectangle
	Score   float32
	ClassID int
}

// decodeYOLO разбирает выход YOLOv8 формы [1, 4+nc, n]: по строкам идут cx, cy, w, h
// и оценки классов, по столбцам кандидаты. Координаты в пикселях входа сети,
// scaleX/scaleY переводят их в пиксели исходного изображения. Рамки обрезаются по bounds.
func decodeYOLO(data []float32, attrs, n int, scaleX, scaleY float64, bounds image.Rectangle, threshold float32) ([]candidate, error) {
	if attrs <= 4 {
		return nil, fmt.Errorf("unexpected yolo output: %d attributes", attrs)
	}
	if len(data) < attrs*n {
		return nil, fmt.Errorf("unexpected yolo output: %d values for %dx%d", len(data), attrs, n)
	}

	at := func(row, col int) float32 { return data[row*n+col] }

	var out []candidate
	for i := 0; i < n; i++ {
		best, bestID := float32(0), -1
		for c := 4; c < attrs; c++ {
			if s := at(c, i); s > best {
				best, bestID = s, c-4
			}
		}
		if bestID < 0 || best < threshold {
			continue
		}

		cx, cy := float64(at(0, i)), float64(at(1, i))
		w, h := float64(at(2, i)), float64(at(3, i))
		rect := image.Rect(
			int((cx-w/2)*scaleX),
			int((cy-h/2)*scaleY),
			int((cx+w/2)*scaleX),
			int((cy+h/2)*scaleY),
		).Intersect(bounds)
		if rect.Empty() {
			continue
		}

		out = append(out, candidate{Rect: rect, Score: best, ClassID: bestID})
	}
	return out, nil
}
