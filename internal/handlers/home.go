package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/listing"
	"github.com/lehmann314159/recipes/internal/models"
	"github.com/lehmann314159/recipes/internal/relay"
	"github.com/lehmann314159/recipes/internal/stats"
)

type HomeHandler struct {
	*view
	gw       *gateway.Gateway
	pageSize int
}

func NewHomeHandler(v *view, gw *gateway.Gateway, pageSize int) *HomeHandler {
	return &HomeHandler{view: v, gw: gw, pageSize: pageSize}
}

// Home lists the categories with their recipe counts.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	done := relay.FromContext(ctx).Begin()

	var (
		categories []models.Category
		recipes    []models.Recipe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res := h.gw.Categories.ListAll(gctx)
		categories = res.Data
		return okOr(res.Success, "categories")
	})
	g.Go(func() error {
		res := h.gw.Recipes.ListAll(gctx)
		recipes = res.Data
		return okOr(res.Success, "recipes")
	})
	if err := g.Wait(); err != nil {
		notify(ctx, relay.Error, "Impossibile recuperare le categorie")
	}
	done()

	h.render(w, r, "home.html", map[string]interface{}{
		"Categories": stats.CategoryTotals(categories, recipes),
	})
}

// Search pages through the recipes whose name contains the name parameter.
func (h *HomeHandler) Search(w http.ResponseWriter, r *http.Request) {
	v := runList(r, listing.Config[models.Recipe]{
		Fetch:          h.gw.Recipes.List,
		Params:         listing.NameParams,
		PageSize:       h.pageSize,
		FailureMessage: "Impossibile recuperare le ricette",
		Logger:         h.log,
	})
	if keepRows(w, r, h.view, v) {
		return
	}
	data := listData(w, "/recipes", "#recipe-results", v)
	data["Title"] = "Ricette"

	if isHTMX(r) {
		h.render(w, r, "recipe-results", data)
	} else {
		h.render(w, r, "recipes.html", data)
	}
}

// Category shows the recipes of one category, optionally filtered by name.
func (h *HomeHandler) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	name := r.URL.Query().Get("name")
	done := relay.FromContext(ctx).Begin()

	var (
		category gateway.Result[models.Category]
		recipes  gateway.Result[[]models.Recipe]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		category = h.gw.Categories.Get(gctx, id)
		return okOr(category.Success, "category")
	})
	g.Go(func() error {
		recipes = h.gw.Recipes.ListBy(gctx, "category_id", id)
		return okOr(recipes.Success, "recipes")
	})
	err := g.Wait()
	done()
	if !category.Success {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		notify(ctx, relay.Error, "Impossibile recuperare le ricette")
	}

	matched := []models.Recipe{}
	for _, rec := range recipes.Data {
		if strings.Contains(strings.ToLower(rec.Name), strings.ToLower(name)) {
			matched = append(matched, rec)
		}
	}
	data := map[string]interface{}{
		"Title":    category.Data.Label,
		"Category": category.Data,
		"Recipes":  matched,
		"Name":     name,
	}

	if isHTMX(r) {
		h.render(w, r, "category-recipes", data)
	} else {
		h.render(w, r, "category.html", data)
	}
}
