package handlers

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lehmann314159/recipes/internal/auth"
	"github.com/lehmann314159/recipes/internal/config"
	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/listing"
	"github.com/lehmann314159/recipes/internal/relay"
	"github.com/lehmann314159/recipes/internal/stats"
	"github.com/lehmann314159/recipes/web"
)

const maxImageSize = 10 << 20

// ParseTemplates parses the embedded templates. Image URLs are resolved
// through images.
func ParseTemplates(images *gateway.Images, site config.SiteSection) (*template.Template, error) {
	return template.New("").Funcs(templateFuncs(images, site)).ParseFS(web.Templates, "templates/*.html")
}

func templateFuncs(images *gateway.Images, site config.SiteSection) template.FuncMap {
	return template.FuncMap{
		"imageURL": images.URL,
		"months":   func() [12]string { return stats.Months },
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"swatch": func(i int) template.CSS {
			if len(site.Palette) == 0 {
				return ""
			}
			color := site.Palette[i%len(site.Palette)]
			if !config.IsColor(color) {
				return ""
			}
			return template.CSS("accent-color: " + color)
		},
	}
}

// view holds what every page needs to render.
type view struct {
	tmpl     *template.Template
	site     config.SiteSection
	sessions *auth.Sessions
	log      zerolog.Logger
}

func (v *view) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	v.renderAll(w, r, data, name)
}

// renderAll executes the named templates in order with the same data. The
// relay is drained once, so its notifications show up a single time.
func (v *view) renderAll(w http.ResponseWriter, r *http.Request, data map[string]interface{}, names ...string) {
	data["Site"] = v.site
	data["HTMX"] = isHTMX(r)
	if v.sessions != nil {
		_, admin := v.sessions.Current(r)
		data["Admin"] = admin
	}
	rl := relay.FromContext(r.Context())
	if rl.Busy() {
		v.log.Warn().Str("path", r.URL.Path).Msg("rendering while an operation is still in flight")
	}
	data["Notifications"] = rl.Drain()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, name := range names {
		if err := v.tmpl.ExecuteTemplate(w, name, data); err != nil {
			v.log.Error().Err(err).Str("template", name).Msg("render failed")
			return
		}
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to path, through HTMX when the request came
// from it.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// runList restores a list view from the request URL and applies the
// navigation event named by the nav parameter.
func runList[T any](r *http.Request, cfg listing.Config[T]) *listing.View[T] {
	ctx := r.Context()
	q := r.URL.Query()
	cfg.Relay = relay.FromContext(ctx)

	v := listing.NewView(cfg)
	v.Restore(q)
	switch q.Get("nav") {
	case "next":
		if !v.NextPage(ctx) {
			v.Refresh(ctx)
		}
	case "prev":
		if !v.PreviousPage(ctx) {
			v.Refresh(ctx)
		}
	case "filter":
		v.FilterTextChange(ctx, q.Get(cfg.Params.Filter))
	default:
		v.Refresh(ctx)
	}
	return v
}

// keepRows answers a failed HTMX list refresh with its notifications only,
// so the rows already on screen stay in place and the URL keeps the old
// window.
func keepRows[T any](w http.ResponseWriter, r *http.Request, vw *view, lv *listing.View[T]) bool {
	if !isHTMX(r) || lv.State() != listing.Error {
		return false
	}
	w.Header().Set("HX-Reswap", "none")
	vw.renderAll(w, r, map[string]interface{}{}, "notifications-oob")
	return true
}

// listData returns the template data of a list view and sets the URL the
// browser should show.
func listData[T any](w http.ResponseWriter, path, target string, v *listing.View[T]) map[string]interface{} {
	values := v.Values()
	w.Header().Set("HX-Push-Url", path+"?"+values.Encode())
	return map[string]interface{}{
		"Path":    path,
		"Target":  target,
		"Query":   v.Query(),
		"Rows":    v.Rows(),
		"Loaded":  v.Loaded(),
		"PrevURL": withNav(path, values, "prev"),
		"NextURL": withNav(path, values, "next"),
	}
}

func withNav(path string, values url.Values, nav string) string {
	out := url.Values{}
	for k, vs := range values {
		out[k] = vs
	}
	out.Set("nav", nav)
	return path + "?" + out.Encode()
}

// readImage returns the uploaded image file, or nil when none was sent.
func readImage(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("image")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxImageSize)
	if err == http.ErrNotMultipart {
		return nil
	}
	return err
}

// WithRelay gives every request its own relay.
func WithRelay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(relay.NewContext(r.Context(), relay.New())))
	})
}

// RequestLogger logs one line per request.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// okOr turns an unsuccessful gateway result into an error for errgroup.
func okOr(success bool, what string) error {
	if !success {
		return fmt.Errorf("load %s failed", what)
	}
	return nil
}

func notify(ctx context.Context, level relay.Level, message string) {
	relay.FromContext(ctx).Notify(level, message)
}
