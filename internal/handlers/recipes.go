package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lehmann314159/recipes/internal/editor"
	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/relay"
)

type RecipeHandler struct {
	*view
	gw     *gateway.Gateway
	nested *editor.Nested
}

func NewRecipeHandler(v *view, gw *gateway.Gateway, nested *editor.Nested) *RecipeHandler {
	return &RecipeHandler{view: v, gw: gw, nested: nested}
}

func (h *RecipeHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	done := relay.FromContext(ctx).Begin()
	defer done()

	res := h.gw.Recipes.Get(ctx, chi.URLParam(r, "id"))
	if !res.Success {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}
	recipe := res.Data
	h.nested.LoadChildren(ctx, &recipe)
	if recipe.CategoryID != "" {
		if c := h.gw.Categories.Get(ctx, recipe.CategoryID); c.Success {
			recipe.CategoryLabel = c.Data.Label
		}
	}

	h.render(w, r, "recipe.html", map[string]interface{}{
		"Title":  recipe.Name,
		"Recipe": recipe,
	})
}

func (h *RecipeHandler) Favourite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recipe, out := editor.ToggleFavourite(r.Context(), h.gw.Recipes, id)
	if !isHTMX(r) {
		http.Redirect(w, r, "/recipes/"+id, http.StatusSeeOther)
		return
	}
	if !out.OK() {
		// Keep the button usable with the id the client asked for.
		recipe.ID = id
	}
	h.render(w, r, "favourite-button", map[string]interface{}{"Recipe": recipe})
}
