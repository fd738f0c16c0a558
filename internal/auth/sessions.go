package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const CookieName = "recipes_session"

// refreshWindow is how close to expiry a provider session gets refreshed.
const refreshWindow = 5 * time.Minute

type Sessions struct {
	provider  Provider
	cache     *cache.Cache
	ttl       time.Duration
	loginPath string
	log       zerolog.Logger
	now       func() time.Time
}

func NewSessions(provider Provider, ttl time.Duration, log zerolog.Logger) *Sessions {
	return &Sessions{
		provider:  provider,
		cache:     cache.New(ttl, 10*time.Minute),
		ttl:       ttl,
		loginPath: "/login",
		log:       log.With().Str("component", "sessions").Logger(),
		now:       time.Now,
	}
}

// Login checks the credentials and sets the session cookie.
func (s *Sessions) Login(ctx context.Context, w http.ResponseWriter, email, password string) error {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}
	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.log.Info().Str("email", email).Err(err).Msg("sign-in rejected")
		return err
	}

	id := uuid.NewString()
	s.cache.Set(id, sess, s.ttl)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Info().Str("email", sess.Email).Msg("signed in")
	return nil
}

func (s *Sessions) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if v, ok := s.cache.Get(c.Value); ok {
			if err := s.provider.SignOut(ctx, v.(Session)); err != nil {
				s.log.Warn().Err(err).Msg("provider sign-out failed")
			}
		}
		s.cache.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// Current returns the live session for r, refreshing it through the
// provider when it is about to expire.
func (s *Sessions) Current(r *http.Request) (Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, false
	}
	v, ok := s.cache.Get(c.Value)
	if !ok {
		return Session{}, false
	}
	sess := v.(Session)
	if sess.ExpiresAt.Sub(s.now()) > refreshWindow {
		return sess, true
	}

	refreshed, err := s.provider.Refresh(r.Context(), sess)
	if err != nil {
		s.log.Info().Err(err).Msg("session refresh failed")
		s.cache.Delete(c.Value)
		return Session{}, false
	}
	s.cache.Set(c.Value, refreshed, s.ttl)
	return refreshed, true
}

// Require lets requests with a live session through and sends everyone
// else to the login page.
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.Current(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", s.loginPath)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, s.loginPath, http.StatusSeeOther)
	})
}
