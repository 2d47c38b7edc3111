package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/infrastructure/caloriedb"
)

func TestTable(t *testing.T) {
	res := &entity.EstimationResult{
		TotalCalories: 265.2,
		Detections: []entity.Detection{
			{ClassName: "apple", Confidence: 0.912, EstimatedWeightGrams: 10, Calories: 5.2},
			{ClassName: "apple", Confidence: 0.5, EstimatedWeightGrams: 500, Calories: 260},
		},
	}

	out := Table(res)
	require.Contains(t, out, "Fruit/Vegetable")
	require.Contains(t, out, "0.91")
	require.Contains(t, out, "10.00")
	require.Contains(t, out, "5.20")
	require.Contains(t, out, "500.00")
	require.Contains(t, out, "260.00")
	require.Contains(t, out, "Total Calories: 265.20")
}

func TestTable_Empty(t *testing.T) {
	out := Table(&entity.EstimationResult{})
	require.Contains(t, out, "Total Calories: 0.00")
}

func TestTotal_Nil(t *testing.T) {
	require.Equal(t, "Total Calories: 0", Total(nil))
}

func TestClasses(t *testing.T) {
	tbl := caloriedb.New(map[string]float64{"apple": 52, "kiwi": 61.5})
	out := Classes(append(tbl.Names(), "durian"), tbl.Lookup)

	require.Contains(t, out, "apple")
	require.Contains(t, out, "61.5")
	require.NotContains(t, out, "durian")
}
