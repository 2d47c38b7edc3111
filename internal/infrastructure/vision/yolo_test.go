package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

// yoloOutput собирает выход [attrs, n] по столбцам-кандидатам
func yoloOutput(cands ...[]float32) ([]float32, int, int) {
	attrs, n := len(cands[0]), len(cands)
	data := make([]float32, attrs*n)
	for col, c := range cands {
		for row, v := range c {
			data[row*n+col] = v
		}
	}
	return data, attrs, n
}

func TestDecodeYOLO(t *testing.T) {
	data, attrs, n := yoloOutput(
		// cx, cy, w, h, apple, banana
		[]float32{100, 100, 40, 20, 0.9, 0.1},
		[]float32{300, 300, 100, 100, 0.2, 0.7},
		[]float32{500, 500, 10, 10, 0.1, 0.1}, // ниже порога
	)

	bounds := image.Rect(0, 0, 1280, 1280)
	cands, err := decodeYOLO(data, attrs, n, 2, 2, bounds, 0.25)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	require.Equal(t, 0, cands[0].ClassID)
	require.InDelta(t, 0.9, cands[0].Score, 1e-6)
	require.Equal(t, image.Rect(160, 180, 240, 220), cands[0].Rect)

	require.Equal(t, 1, cands[1].ClassID)
	require.Equal(t, image.Rect(500, 500, 700, 700), cands[1].Rect)
}

func TestDecodeYOLO_ClipsToBounds(t *testing.T) {
	data, attrs, n := yoloOutput([]float32{10, 10, 40, 40, 0.8})

	cands, err := decodeYOLO(data, attrs, n, 1, 1, image.Rect(0, 0, 100, 100), 0.5)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	require.Equal(t, image.Rect(0, 0, 30, 30), cands[0].Rect)
}

func TestDecodeYOLO_BadShape(t *testing.T) {
	_, err := decodeYOLO([]float32{1, 2, 3, 4}, 4, 1, 1, 1, image.Rect(0, 0, 1, 1), 0.5)
	require.Error(t, err)

	_, err = decodeYOLO([]float32{1, 2}, 5, 1, 1, 1, image.Rect(0, 0, 1, 1), 0.5)
	require.Error(t, err)
}
