package handlers

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lehmann314159/recipes/internal/auth"
	"github.com/lehmann314159/recipes/internal/config"
	"github.com/lehmann314159/recipes/internal/editor"
	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/store"
)

// favouriteConcurrency caps in-flight favourite toggles. The route is
// public, so excess requests get 429 instead of queueing on the store.
const favouriteConcurrency = 8

type Deps struct {
	Gateway *gateway.Gateway
	// Blobs is set when the server itself serves images from Bucket.
	Blobs     store.BlobReader
	Bucket    string
	Sessions  *auth.Sessions
	Templates *template.Template
	Site      config.SiteSection
	Listing   config.ListingSection
	Logger    zerolog.Logger
	Metrics   prometheus.Gatherer
	StaticDir string
}

func NewRouter(d Deps) http.Handler {
	v := &view{tmpl: d.Templates, site: d.Site, sessions: d.Sessions, log: d.Logger}
	gw := d.Gateway
	nested := editor.NewNested(gw.RecipeIngredients, gw.Steps, gw.Ingredients, d.Logger)

	home := NewHomeHandler(v, gw, d.Listing.PageSize)
	recipes := NewRecipeHandler(v, gw, nested)
	sessions := NewSessionHandler(v)
	dashboard := NewDashboardHandler(v, gw)
	adminCategories := NewCategoryResource(v, gw, d.Listing)
	adminIngredients := NewIngredientResource(v, gw, d.Listing)
	adminRecipes := NewRecipeResource(v, gw, nested, d.Listing)
	children := NewRecipeChildHandler(v, gw, nested)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(WithRelay)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))
	}
	if d.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))
	}
	if d.Blobs != nil {
		bucket := d.Bucket
		if bucket == "" {
			bucket = gateway.DefaultBucket
		}
		r.Get("/images/{id}", NewImageHandler(d.Blobs, bucket, gateway.DefaultContentType, d.Logger).Serve)
	}

	// Public
	r.Get("/", home.Home)
	r.Get("/recipes", home.Search)
	r.Get("/categories/{id}", home.Category)
	r.Get("/recipes/{id}", recipes.Show)
	r.With(middleware.Throttle(favouriteConcurrency)).Post("/recipes/{id}/favourite", recipes.Favourite)
	r.Get("/login", sessions.LoginForm)
	r.Post("/login", sessions.Login)
	r.Post("/logout", sessions.Logout)

	// Admin
	r.Route("/admin", func(r chi.Router) {
		r.Use(d.Sessions.Require)
		r.Get("/", dashboard.Show)
		r.Route("/categories", adminCategories.Routes)
		r.Route("/ingredients", adminIngredients.Routes)
		r.Route("/recipes", func(r chi.Router) {
			adminRecipes.Routes(r)
			children.Routes(r)
		})
	})

	return r
}
