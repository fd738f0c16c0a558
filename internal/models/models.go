package models

import "time"

type Category struct {
	ID        string
	Label     string
	CreatedAt time.Time
	Total     int // computed field
}

type Ingredient struct {
	ID        string
	Label     string
	Icon      string
	CreatedAt time.Time
}

type Recipe struct {
	ID          string
	Name        string
	Time        string
	People      int
	CategoryID  string
	IsFavourite bool
	CreatedDate time.Time

	CategoryLabel string             // computed field
	Ingredients   []RecipeIngredient // computed field
	Steps         []ProcedureStep    // computed field
}

// RecipeIngredient links an ingredient to a recipe with a free-text quantity.
type RecipeIngredient struct {
	ID           string
	RecipeID     string
	IngredientID string
	Quantity     string
	Label        string // computed field - from the ingredient
	Icon         string // computed field - from the ingredient
}

type ProcedureStep struct {
	ID       string
	RecipeID string
	Step     string
	Position int
}
