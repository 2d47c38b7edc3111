package vision

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"calorie-vision/internal/domain/entity"
)

// Labels таблица меток модели: индекс класса -> имя
type Labels []string

// LoadLabels читает файл меток: одна метка на строку, пустые строки и "#"-комментарии пропускаются.
func LoadLabels(path string) (Labels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()

	var labels Labels
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}

// Label возвращает имя класса по индексу
func (l Labels) Label(classIndex int) (string, error) {
	if classIndex < 0 || classIndex >= len(l) {
		return "", fmt.Errorf("%w: class index %d out of range [0,%d)", entity.ErrDetector, classIndex, len(l))
	}
	return l[classIndex], nil
}
