// Package stats computes the recipe counts shown on the home page and the
// admin dashboard.
package stats

import (
	"time"

	"github.com/lehmann314159/recipes/internal/models"
)

var Months = [12]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// CategoryTotals returns the categories with Total set to the number of
// recipes in each.
func CategoryTotals(categories []models.Category, recipes []models.Recipe) []models.Category {
	counts := countByCategory(recipes)
	out := make([]models.Category, len(categories))
	for i, c := range categories {
		c.Total = counts[c.ID]
		out[i] = c
	}
	return out
}

type Year struct {
	Year   int
	Months [12]int
}

type Dashboard struct {
	TotalRecipes  int
	Categories    []models.Category // with Total set
	Uncategorized int
	Previous      Year
	Current       Year
}

// NewDashboard buckets recipes by category and by creation month for the
// year of now and the year before.
func NewDashboard(recipes []models.Recipe, categories []models.Category, now time.Time) Dashboard {
	d := Dashboard{
		TotalRecipes: len(recipes),
		Categories:   CategoryTotals(categories, recipes),
		Previous:     Year{Year: now.Year() - 1},
		Current:      Year{Year: now.Year()},
	}

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}
	for _, r := range recipes {
		if !known[r.CategoryID] {
			d.Uncategorized++
		}
		if r.CreatedDate.IsZero() {
			continue
		}
		month := int(r.CreatedDate.Month()) - 1
		switch r.CreatedDate.Year() {
		case d.Current.Year:
			d.Current.Months[month]++
		case d.Previous.Year:
			d.Previous.Months[month]++
		}
	}
	return d
}

func countByCategory(recipes []models.Recipe) map[string]int {
	counts := make(map[string]int)
	for _, r := range recipes {
		if r.CategoryID != "" {
			counts[r.CategoryID]++
		}
	}
	return counts
}
