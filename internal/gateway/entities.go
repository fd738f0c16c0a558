package gateway

import (
	"time"

	"github.com/spf13/cast"

	"github.com/lehmann314159/recipes/internal/models"
	"github.com/lehmann314159/recipes/internal/store"
)

const dateLayout = "2006-01-02"

func encodeCategory(c models.Category) store.Row {
	return store.Row{"label": c.Label}
}

func decodeCategory(row store.Row) (models.Category, error) {
	created, err := optionalTime(row["created_at"])
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{
		ID:        cast.ToString(row["id"]),
		Label:     cast.ToString(row["label"]),
		CreatedAt: created,
	}, nil
}

func encodeIngredient(i models.Ingredient) store.Row {
	return store.Row{"label": i.Label, "icon": i.Icon}
}

func decodeIngredient(row store.Row) (models.Ingredient, error) {
	created, err := optionalTime(row["created_at"])
	if err != nil {
		return models.Ingredient{}, err
	}
	return models.Ingredient{
		ID:        cast.ToString(row["id"]),
		Label:     cast.ToString(row["label"]),
		Icon:      cast.ToString(row["icon"]),
		CreatedAt: created,
	}, nil
}

func encodeRecipe(r models.Recipe) store.Row {
	row := store.Row{
		"name":         r.Name,
		"time":         r.Time,
		"people":       r.People,
		"category_id":  nil,
		"is_favourite": r.IsFavourite,
	}
	if r.CategoryID != "" {
		row["category_id"] = r.CategoryID
	}
	if !r.CreatedDate.IsZero() {
		row["created_date"] = r.CreatedDate.Format(dateLayout)
	}
	return row
}

func decodeRecipe(row store.Row) (models.Recipe, error) {
	people, err := cast.ToIntE(nonNil(row["people"], 0))
	if err != nil {
		return models.Recipe{}, err
	}
	fav, err := cast.ToBoolE(nonNil(row["is_favourite"], false))
	if err != nil {
		return models.Recipe{}, err
	}
	created, err := optionalTime(row["created_date"])
	if err != nil {
		return models.Recipe{}, err
	}
	return models.Recipe{
		ID:          cast.ToString(row["id"]),
		Name:        cast.ToString(row["name"]),
		Time:        cast.ToString(row["time"]),
		People:      people,
		CategoryID:  cast.ToString(row["category_id"]),
		IsFavourite: fav,
		CreatedDate: created,
	}, nil
}

func encodeRecipeIngredient(ri models.RecipeIngredient) store.Row {
	return store.Row{
		"recipe_id":     ri.RecipeID,
		"ingredient_id": ri.IngredientID,
		"quantity":      ri.Quantity,
	}
}

func decodeRecipeIngredient(row store.Row) (models.RecipeIngredient, error) {
	return models.RecipeIngredient{
		ID:           cast.ToString(row["id"]),
		RecipeID:     cast.ToString(row["recipe_id"]),
		IngredientID: cast.ToString(row["ingredient_id"]),
		Quantity:     cast.ToString(row["quantity"]),
	}, nil
}

func encodeStep(s models.ProcedureStep) store.Row {
	return store.Row{
		"recipe_id": s.RecipeID,
		"step":      s.Step,
		"position":  s.Position,
	}
}

func decodeStep(row store.Row) (models.ProcedureStep, error) {
	pos, err := cast.ToIntE(nonNil(row["position"], 0))
	if err != nil {
		return models.ProcedureStep{}, err
	}
	return models.ProcedureStep{
		ID:       cast.ToString(row["id"]),
		RecipeID: cast.ToString(row["recipe_id"]),
		Step:     cast.ToString(row["step"]),
		Position: pos,
	}, nil
}

func optionalTime(v any) (time.Time, error) {
	if v == nil || v == "" {
		return time.Time{}, nil
	}
	return cast.ToTimeE(v)
}

func nonNil(v, def any) any {
	if v == nil {
		return def
	}
	return v
}
