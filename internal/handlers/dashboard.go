package handlers

import (
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/models"
	"github.com/lehmann314159/recipes/internal/relay"
	"github.com/lehmann314159/recipes/internal/stats"
)

type DashboardHandler struct {
	*view
	gw  *gateway.Gateway
	now func() time.Time
}

func NewDashboardHandler(v *view, gw *gateway.Gateway) *DashboardHandler {
	return &DashboardHandler{view: v, gw: gw, now: time.Now}
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	done := relay.FromContext(ctx).Begin()

	var (
		recipes    []models.Recipe
		categories []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res := h.gw.Recipes.ListAll(gctx)
		recipes = res.Data
		return okOr(res.Success, "recipes")
	})
	g.Go(func() error {
		res := h.gw.Categories.ListAll(gctx)
		categories = res.Data
		return okOr(res.Success, "categories")
	})
	if err := g.Wait(); err != nil {
		notify(ctx, relay.Error, "Impossibile recuperare le statistiche")
	}
	done()

	h.render(w, r, "dashboard.html", map[string]interface{}{
		"Title": "Dashboard",
		"Stats": stats.NewDashboard(recipes, categories, h.now()),
	})
}
