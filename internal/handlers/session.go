package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lehmann314159/recipes/internal/auth"
)

type SessionHandler struct {
	*view
}

func NewSessionHandler(v *view) *SessionHandler {
	return &SessionHandler{view: v}
}

func (h *SessionHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.Current(r); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", map[string]interface{}{"Title": "Accedi", "Email": "", "Error": ""})
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))

	err := h.sessions.Login(r.Context(), w, email, r.FormValue("password"))
	if err == nil {
		redirect(w, r, "/admin")
		return
	}
	msg := "Impossibile effettuare il log in"
	if errors.Is(err, auth.ErrInvalidEmail) {
		msg = "E-mail errata"
	}
	h.render(w, r, "login.html", map[string]interface{}{"Title": "Accedi", "Email": email, "Error": msg})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context(), w, r)
	redirect(w, r, "/")
}
