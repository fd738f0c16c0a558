// Package auth keeps admin sessions. Credentials are checked by a Provider:
// the hosted service's auth API, or a single static admin from config.
package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
)

type Session struct {
	AccessToken  string
	RefreshToken string
	Email        string
	ExpiresAt    time.Time
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	Refresh(ctx context.Context, s Session) (Session, error)
	SignOut(ctx context.Context, s Session) error
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// HashPassword returns the bcrypt hash to put in admin.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Static admits one admin whose password hash comes from config.
type Static struct {
	email string
	hash  []byte
	ttl   time.Duration
	now   func() time.Time
}

func NewStatic(email, passwordHash string, ttl time.Duration) *Static {
	return &Static{email: email, hash: []byte(passwordHash), ttl: ttl, now: time.Now}
}

func (p *Static) SignIn(_ context.Context, email, password string) (Session, error) {
	if !strings.EqualFold(strings.TrimSpace(email), p.email) {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return p.session(), nil
}

func (p *Static) Refresh(_ context.Context, s Session) (Session, error) {
	if s.RefreshToken == "" {
		return Session{}, ErrInvalidCredentials
	}
	return p.session(), nil
}

func (p *Static) SignOut(context.Context, Session) error {
	return nil
}

func (p *Static) session() Session {
	return Session{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		Email:        p.email,
		ExpiresAt:    p.now().Add(p.ttl),
	}
}
