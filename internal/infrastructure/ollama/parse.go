package ollama

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
	"regexp"
	"strings"

	"calorie-vision/internal/domain/entity"
)

var (
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment  = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailing     = regexp.MustCompile(`,(\s*[}\]])`)
)

type response struct {
	Objects []object `json:"objects"`
}

type object struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"`
}

// parseObjects разбирает ответ модели. Нормированные рамки переводятся в пиксели bounds.
// Метки не из index возвращаются в skipped, рамки нулевой площади отбрасываются.
func parseObjects(raw string, bounds image.Rectangle, index map[string]int) (detections []entity.RawDetection, skipped []string, err error) {
	raw = sanitizeJSON(raw)
	if raw == "" {
		return nil, nil, fmt.Errorf("empty model response")
	}

	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, nil, fmt.Errorf("decode model response: %w", err)
	}

	detections = make([]entity.RawDetection, 0, len(resp.Objects))
	for _, o := range resp.Objects {
		classID, ok := index[strings.ToLower(strings.TrimSpace(o.Label))]
		if !ok {
			skipped = append(skipped, o.Label)
			continue
		}
		if len(o.Box) != 4 {
			return nil, nil, fmt.Errorf("object %q: box must have 4 values, got %d", o.Label, len(o.Box))
		}

		w, h := float64(bounds.Dx()), float64(bounds.Dy())
		rect := image.Rect(
			bounds.Min.X+int(math.Round(clamp01(o.Box[0])*w)),
			bounds.Min.Y+int(math.Round(clamp01(o.Box[1])*h)),
			bounds.Min.X+int(math.Round(clamp01(o.Box[2])*w)),
			bounds.Min.Y+int(math.Round(clamp01(o.Box[3])*h)),
		)
		if rect.Empty() {
			continue
		}

		detections = append(detections, entity.RawDetection{
			Box:        entity.BoxFromRect(rect),
			ClassIndex: classID,
			Confidence: clamp01(o.Confidence),
		})
	}
	return detections, skipped, nil
}

// sanitizeJSON убирает markdown-ограждения, комментарии и висячие запятые
func sanitizeJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
