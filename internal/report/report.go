package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"calorie-vision/internal/domain/entity"
)

// Table печатает найденные объекты таблицей (класс, уверенность, вес, калории) и итог
func Table(result *entity.EstimationResult) string {
	t := newWriter()
	t.AppendHeader(table.Row{"Fruit/Vegetable", "Confidence", "Weight (g)", "Calories"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	for _, d := range result.Detections {
		t.AppendRow(table.Row{
			d.ClassName,
			fmt.Sprintf("%.2f", d.Confidence),
			fmt.Sprintf("%.2f", d.EstimatedWeightGrams),
			fmt.Sprintf("%.2f", d.Calories),
		})
	}

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	sb.WriteString(Total(result))
	return sb.String()
}

// Total строка итога
func Total(result *entity.EstimationResult) string {
	if result == nil {
		return "Total Calories: 0"
	}
	return fmt.Sprintf("Total Calories: %.2f", result.TotalCalories)
}

// Classes печатает таблицу калорийности известных классов
func Classes(names []string, lookup func(string) (float64, error)) string {
	t := newWriter()
	t.AppendHeader(table.Row{"Class", "kcal / 100 g"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	for _, name := range names {
		kcal, err := lookup(name)
		if err != nil {
			continue
		}
		t.AppendRow(table.Row{name, fmt.Sprintf("%g", kcal)})
	}
	return t.Render()
}

// newWriter таблица в тонкой рамке, заголовки как есть (по умолчанию go-pretty переводит их в верхний регистр)
func newWriter() table.Writer {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t := table.NewWriter()
	t.SetStyle(style)
	return t
}
