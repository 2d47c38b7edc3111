package caloriedb

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/domain/port"
)

// Table таблица калорийности (ккал на 100 г). После загрузки только читается,
// поэтому её можно делить между параллельными вызовами без блокировок.
type Table struct {
	calories map[string]float64
}

// New строит таблицу из готового словаря. Ключи приводятся к нижнему регистру.
func New(calories map[string]float64) *Table {
	t := &Table{calories: make(map[string]float64, len(calories))}
	for name, kcal := range calories {
		t.calories[normalize(name)] = kcal
	}
	return t
}

// Load читает JSON-объект вида {"apple": 52, ...}.
// Если файла нет или JSON битый, возвращается пустая таблица и ошибка ErrCalorieTableLoad:
// вызывающий логирует её и продолжает работу.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return New(nil), fmt.Errorf("%w: read %s: %v", entity.ErrCalorieTableLoad, path, err)
	}

	var calories map[string]float64
	if err := json.Unmarshal(data, &calories); err != nil {
		return New(nil), fmt.Errorf("%w: decode %s: %v", entity.ErrCalorieTableLoad, path, err)
	}

	return New(calories), nil
}

// Lookup возвращает калорийность класса. Совпадение точное, без учёта регистра.
func (t *Table) Lookup(className string) (float64, error) {
	kcal, ok := t.calories[normalize(className)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", entity.ErrClassNotFound, className)
	}
	return kcal, nil
}

// Names возвращает отсортированный список классов
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.calories))
	for name := range t.calories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len возвращает количество записей
func (t *Table) Len() int {
	return len(t.calories)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Проверка реализации интерфейса
var _ port.CalorieTable = (*Table)(nil)
