package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/recipes/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCategoryTotals(t *testing.T) {
	categories := []models.Category{{ID: "c1", Label: "Primi"}, {ID: "c2", Label: "Dolci"}}
	recipes := []models.Recipe{{CategoryID: "c1"}, {CategoryID: "c1"}, {CategoryID: ""}}

	got := CategoryTotals(categories, recipes)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Total)
	assert.Equal(t, 0, got[1].Total)
	assert.Equal(t, 0, categories[0].Total, "input must not be modified")
}

func TestDashboard(t *testing.T) {
	now := date(2026, time.October, 14)
	categories := []models.Category{{ID: "c1", Label: "Secondi"}}
	recipes := []models.Recipe{
		{CategoryID: "c1", CreatedDate: date(2026, time.October, 1)},
		{CategoryID: "c1", CreatedDate: date(2026, time.January, 31)},
		{CategoryID: "gone", CreatedDate: date(2025, time.December, 24)},
		{CreatedDate: date(2023, time.May, 5)},
		{},
	}

	d := NewDashboard(recipes, categories, now)
	assert.Equal(t, 5, d.TotalRecipes)
	assert.Equal(t, 2, d.Categories[0].Total)
	assert.Equal(t, 3, d.Uncategorized)
	assert.Equal(t, 2026, d.Current.Year)
	assert.Equal(t, 1, d.Current.Months[9])
	assert.Equal(t, 1, d.Current.Months[0])
	assert.Equal(t, 2025, d.Previous.Year)
	assert.Equal(t, 1, d.Previous.Months[11])
}
