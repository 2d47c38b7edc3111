package entity

import "image"

// BoundingBox прямоугольник объекта в пикселях: (X1,Y1) левый верхний угол, (X2,Y2) правый нижний
type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width возвращает ширину рамки
func (b BoundingBox) Width() int {
	return b.X2 - b.X1
}

// Height возвращает высоту рамки
func (b BoundingBox) Height() int {
	return b.Y2 - b.Y1
}

// Area возвращает площадь рамки в пикселях (0 для вырожденной рамки)
func (b BoundingBox) Area() int {
	if b.Width() <= 0 || b.Height() <= 0 {
		return 0
	}
	return b.Width() * b.Height()
}

// Rect переводит рамку в image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// BoxFromRect строит рамку из image.Rectangle
func BoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}
