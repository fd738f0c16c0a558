package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lehmann314159/recipes/internal/editor"
	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/listing"
)

// AdminRow is one line of an admin list.
type AdminRow struct {
	ID        string
	Title     string
	Detail    string
	Image     string
	EditURL   string
	DeleteURL string
}

// Resource serves the admin list and form of one entity.
type Resource[T any] struct {
	*view
	path      string
	heading   string
	table     *gateway.Table[T]
	editor    *editor.Editor[T]
	withImage bool
	params    listing.Params
	pageSize  int
	// trigger is the hx-trigger of the search box.
	trigger     string
	loadFailure string
	row         func(T) AdminRow
	parse       func(r *http.Request, fields *T)
	form        string
	page        string
	// extras adds the data a form needs beyond the draft.
	extras func(ctx context.Context, data map[string]interface{}, d *editor.Draft[T])
}

func (h *Resource[T]) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.New)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Edit)
	r.Put("/{id}", h.Update)
	r.Post("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Resource[T]) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, h.runList(r))
}

func (h *Resource[T]) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, &editor.Draft[T]{}, editor.Validation{})
}

func (h *Resource[T]) Edit(w http.ResponseWriter, r *http.Request) {
	d, out := h.editor.Load(r.Context(), chi.URLParam(r, "id"))
	if !out.OK() {
		http.Error(w, out.Message, http.StatusNotFound)
		return
	}
	h.renderForm(w, r, &d, editor.Validation{})
}

func (h *Resource[T]) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, &editor.Draft[T]{})
}

func (h *Resource[T]) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, &editor.Draft[T]{ID: chi.URLParam(r, "id"), HasImage: h.withImage})
}

// Delete removes the record and answers with the list page the request
// came from, so the view stays where the user was.
func (h *Resource[T]) Delete(w http.ResponseWriter, r *http.Request) {
	h.editor.Delete(r.Context(), chi.URLParam(r, "id"))
	if !isHTMX(r) {
		http.Redirect(w, r, h.path+"?"+r.URL.RawQuery, http.StatusSeeOther)
		return
	}
	h.renderList(w, r, h.runList(r))
}

func (h *Resource[T]) save(w http.ResponseWriter, r *http.Request, d *editor.Draft[T]) {
	if err := parseForm(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.parse(r, &d.Fields)
	if h.withImage {
		img, err := readImage(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if img != nil {
			d.StageImage(img)
		}
	}

	out := h.editor.Save(r.Context(), d)
	if out.OK() && !isHTMX(r) {
		http.Redirect(w, r, h.editPath(d.ID), http.StatusSeeOther)
		return
	}
	if out.Redirect != "" {
		w.Header().Set("HX-Push-Url", out.Redirect)
	}
	invalid := out.Invalid
	if invalid == nil {
		invalid = editor.Validation{}
	}
	h.renderForm(w, r, d, invalid)
}

func (h *Resource[T]) runList(r *http.Request) *listing.View[T] {
	return runList(r, listing.Config[T]{
		Fetch:          h.table.List,
		Params:         h.params,
		PageSize:       h.pageSize,
		FailureMessage: h.loadFailure,
		Logger:         h.log,
	})
}

func (h *Resource[T]) renderList(w http.ResponseWriter, r *http.Request, v *listing.View[T]) {
	if keepRows(w, r, h.view, v) {
		return
	}
	data := listData(w, h.path, "#admin-rows", v)
	values := v.Values().Encode()

	rows := make([]AdminRow, 0, len(v.Rows()))
	for _, item := range v.Rows() {
		row := h.row(item)
		row.EditURL = h.editPath(row.ID)
		row.DeleteURL = h.path + "/" + row.ID + "?" + values
		rows = append(rows, row)
	}
	data["Rows"] = rows
	data["Title"] = h.heading
	data["Heading"] = h.heading
	data["FilterKey"] = h.params.Filter
	data["Trigger"] = h.trigger

	if isHTMX(r) {
		h.render(w, r, "admin-rows", data)
	} else {
		h.render(w, r, "admin_list.html", data)
	}
}

func (h *Resource[T]) renderForm(w http.ResponseWriter, r *http.Request, d *editor.Draft[T], invalid editor.Validation) {
	data := map[string]interface{}{
		"Title":   h.heading,
		"Draft":   d,
		"Invalid": invalid,
	}
	if h.extras != nil {
		h.extras(r.Context(), data, d)
	}

	if isHTMX(r) {
		h.render(w, r, h.form, data)
	} else {
		h.render(w, r, h.page, data)
	}
}

func (h *Resource[T]) editPath(id string) string {
	return h.path + "/" + id
}
