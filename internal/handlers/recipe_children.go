package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lehmann314159/recipes/internal/editor"
	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/models"
)

// RecipeChildHandler edits the ingredients and steps of an existing recipe.
type RecipeChildHandler struct {
	*view
	gw     *gateway.Gateway
	nested *editor.Nested
}

func NewRecipeChildHandler(v *view, gw *gateway.Gateway, nested *editor.Nested) *RecipeChildHandler {
	return &RecipeChildHandler{view: v, gw: gw, nested: nested}
}

func (h *RecipeChildHandler) Routes(r chi.Router) {
	r.Post("/{id}/ingredients", h.AddIngredient)
	r.Delete("/{id}/ingredients/{linkID}", h.RemoveIngredient)
	r.Post("/{id}/ingredients/{linkID}/delete", h.RemoveIngredient)
	r.Post("/{id}/steps", h.AddStep)
	r.Delete("/{id}/steps/{stepID}", h.RemoveStep)
	r.Post("/{id}/steps/{stepID}/delete", h.RemoveStep)
	r.Post("/{id}/steps/move", h.MoveStep)
}

func (h *RecipeChildHandler) AddIngredient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	recipe := h.load(r)
	in := &editor.IngredientDraft{
		IngredientID: r.FormValue("ingredient_id"),
		Quantity:     r.FormValue("quantity"),
	}
	out := h.nested.AddIngredient(r.Context(), &recipe, in)
	h.respond(w, r, "recipe-ingredients", recipe, out, map[string]interface{}{"IngredientDraft": in})
}

func (h *RecipeChildHandler) RemoveIngredient(w http.ResponseWriter, r *http.Request) {
	recipe := h.load(r)
	out := h.nested.RemoveIngredient(r.Context(), &recipe, chi.URLParam(r, "linkID"))
	h.respond(w, r, "recipe-ingredients", recipe, out, nil)
}

func (h *RecipeChildHandler) AddStep(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	recipe := h.load(r)
	sd := &editor.StepDraft{Text: r.FormValue("step")}
	out := h.nested.AddStep(r.Context(), &recipe, sd)
	h.respond(w, r, "recipe-steps", recipe, out, map[string]interface{}{"StepDraft": sd})
}

func (h *RecipeChildHandler) RemoveStep(w http.ResponseWriter, r *http.Request) {
	recipe := h.load(r)
	out := h.nested.RemoveStep(r.Context(), &recipe, chi.URLParam(r, "stepID"))
	h.respond(w, r, "recipe-steps", recipe, out, nil)
}

func (h *RecipeChildHandler) MoveStep(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	from, err := strconv.Atoi(r.FormValue("from"))
	if err != nil {
		http.Error(w, "Invalid from", http.StatusBadRequest)
		return
	}
	to, err := strconv.Atoi(r.FormValue("to"))
	if err != nil {
		http.Error(w, "Invalid to", http.StatusBadRequest)
		return
	}
	recipe := h.load(r)
	out := h.nested.MoveStep(r.Context(), &recipe, from, to)
	h.respond(w, r, "recipe-steps", recipe, out, nil)
}

func (h *RecipeChildHandler) load(r *http.Request) models.Recipe {
	recipe := models.Recipe{ID: chi.URLParam(r, "id")}
	h.nested.LoadChildren(r.Context(), &recipe)
	return recipe
}

func (h *RecipeChildHandler) respond(w http.ResponseWriter, r *http.Request, partial string, recipe models.Recipe, out editor.Outcome, extra map[string]interface{}) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/admin/recipes/"+recipe.ID, http.StatusSeeOther)
		return
	}

	invalid := out.Invalid
	if invalid == nil {
		invalid = editor.Validation{}
	}
	data := map[string]interface{}{
		"Draft":           &editor.Draft[models.Recipe]{ID: recipe.ID, Fields: recipe},
		"Invalid":         invalid,
		"IngredientDraft": &editor.IngredientDraft{},
		"StepDraft":       &editor.StepDraft{},
	}
	if partial == "recipe-ingredients" {
		res := h.gw.Ingredients.ListAll(r.Context())
		data["Ingredients"] = res.Data
	}
	for k, v := range extra {
		data[k] = v
	}
	h.renderAll(w, r, data, partial, "notifications-oob")
}
