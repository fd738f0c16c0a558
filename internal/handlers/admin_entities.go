package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lehmann314159/recipes/internal/config"
	"github.com/lehmann314159/recipes/internal/editor"
	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/listing"
	"github.com/lehmann314159/recipes/internal/models"
	"github.com/lehmann314159/recipes/internal/relay"
)

const immediateSearch = "input changed"

func debouncedSearch(d time.Duration) string {
	if d <= 0 {
		return immediateSearch
	}
	return fmt.Sprintf("%s delay:%dms", immediateSearch, d.Milliseconds())
}

func NewCategoryResource(v *view, gw *gateway.Gateway, cfg config.ListingSection) *Resource[models.Category] {
	const path = "/admin/categories"
	return &Resource[models.Category]{
		view:    v,
		path:    path,
		heading: "Categorie",
		table:   gw.Categories,
		editor: editor.New[models.Category](gw.Categories, gw.Images, editor.Options[models.Category]{
			Entity:    "category",
			Validate:  editor.ValidateCategory,
			WithImage: true,
			EditPath:  func(id string) string { return path + "/" + id },
			Messages:  editor.CategoryMessages,
		}, v.log),
		withImage:   true,
		params:      listing.LabelParams,
		pageSize:    cfg.PageSize,
		trigger:     immediateSearch,
		loadFailure: "Impossibile recuperare le categorie",
		row: func(c models.Category) AdminRow {
			return AdminRow{ID: c.ID, Title: c.Label, Detail: c.CreatedAt.Format("02/01/2006"), Image: gw.Images.URL(c.ID)}
		},
		parse: func(r *http.Request, c *models.Category) {
			c.Label = strings.TrimSpace(r.FormValue("label"))
		},
		form: "category-form",
		page: "category_form.html",
	}
}

func NewIngredientResource(v *view, gw *gateway.Gateway, cfg config.ListingSection) *Resource[models.Ingredient] {
	const path = "/admin/ingredients"
	return &Resource[models.Ingredient]{
		view:    v,
		path:    path,
		heading: "Ingredienti",
		table:   gw.Ingredients,
		editor: editor.New[models.Ingredient](gw.Ingredients, nil, editor.Options[models.Ingredient]{
			Entity:   "ingredient",
			Validate: editor.ValidateIngredient,
			EditPath: func(id string) string { return path + "/" + id },
			Messages: editor.IngredientMessages,
		}, v.log),
		params:      listing.LabelParams,
		pageSize:    cfg.PageSize,
		trigger:     debouncedSearch(cfg.SearchDelay),
		loadFailure: "Impossibile recuperare gli ingredienti",
		row: func(i models.Ingredient) AdminRow {
			return AdminRow{ID: i.ID, Title: strings.TrimSpace(i.Icon + " " + i.Label)}
		},
		parse: func(r *http.Request, i *models.Ingredient) {
			i.Label = strings.TrimSpace(r.FormValue("label"))
			i.Icon = strings.TrimSpace(r.FormValue("icon"))
		},
		form: "ingredient-form",
		page: "ingredient_form.html",
	}
}

func NewRecipeResource(v *view, gw *gateway.Gateway, nested *editor.Nested, cfg config.ListingSection) *Resource[models.Recipe] {
	const path = "/admin/recipes"
	return &Resource[models.Recipe]{
		view:    v,
		path:    path,
		heading: "Ricette",
		table:   gw.Recipes,
		editor: editor.New[models.Recipe](gw.Recipes, gw.Images, editor.Options[models.Recipe]{
			Entity:    "recipe",
			Validate:  editor.ValidateRecipe,
			WithImage: true,
			EditPath:  func(id string) string { return path + "/" + id },
			Messages:  editor.RecipeMessages,
		}, v.log),
		withImage:   true,
		params:      listing.NameParams,
		pageSize:    cfg.PageSize,
		trigger:     immediateSearch,
		loadFailure: "Impossibile recuperare le ricette",
		row: func(rec models.Recipe) AdminRow {
			return AdminRow{
				ID:     rec.ID,
				Title:  rec.Name,
				Detail: fmt.Sprintf("%s · %d persone", rec.Time, rec.People),
				Image:  gw.Images.URL(rec.ID),
			}
		},
		parse:  parseRecipe,
		form:   "recipe-form",
		page:   "recipe_form.html",
		extras: recipeExtras(gw, nested),
	}
}

func parseRecipe(r *http.Request, rec *models.Recipe) {
	rec.Name = strings.TrimSpace(r.FormValue("name"))
	rec.Time = strings.TrimSpace(r.FormValue("time"))
	rec.People, _ = strconv.Atoi(strings.TrimSpace(r.FormValue("people")))
	rec.CategoryID = r.FormValue("category_id")
	rec.IsFavourite = r.FormValue("is_favourite") != ""
}

// recipeExtras loads the category and ingredient pickers and, for an
// existing recipe, its ingredients and steps.
func recipeExtras(gw *gateway.Gateway, nested *editor.Nested) func(context.Context, map[string]interface{}, *editor.Draft[models.Recipe]) {
	return func(ctx context.Context, data map[string]interface{}, d *editor.Draft[models.Recipe]) {
		var (
			categories  []models.Category
			ingredients []models.Ingredient
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			res := gw.Categories.ListAll(gctx)
			categories = res.Data
			return okOr(res.Success, "categories")
		})
		g.Go(func() error {
			res := gw.Ingredients.ListAll(gctx)
			ingredients = res.Data
			return okOr(res.Success, "ingredients")
		})
		if err := g.Wait(); err != nil {
			notify(ctx, relay.Error, "Impossibile recuperare categorie e ingredienti")
		}
		if d.ID != "" {
			d.Fields.ID = d.ID
			nested.LoadChildren(ctx, &d.Fields)
		}

		data["Categories"] = categories
		data["Ingredients"] = ingredients
		data["IngredientDraft"] = &editor.IngredientDraft{}
		data["StepDraft"] = &editor.StepDraft{}
	}
}
