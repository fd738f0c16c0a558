package supabase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/lehmann314159/recipes/internal/auth"
)

// Auth signs admins in against GoTrue. It implements auth.Provider.
type Auth struct {
	c   *Client
	now func() time.Time
}

func (c *Client) Auth() *Auth {
	return &Auth{c: c, now: time.Now}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		Email string `json:"email"`
	} `json:"user"`
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return auth.Session{}, err
	}
	return a.token(ctx, "password", body)
}

func (a *Auth) Refresh(ctx context.Context, s auth.Session) (auth.Session, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": s.RefreshToken})
	if err != nil {
		return auth.Session{}, err
	}
	return a.token(ctx, "refresh_token", body)
}

func (a *Auth) SignOut(ctx context.Context, s auth.Session) error {
	resp, err := a.c.doWithToken(ctx, http.MethodPost, "/auth/v1/logout", nil, []byte("{}"), s.AccessToken)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (a *Auth) token(ctx context.Context, grant string, body []byte) (auth.Session, error) {
	resp, err := a.c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type="+grant, nil, body)
	if err != nil {
		return auth.Session{}, err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return auth.Session{}, fmt.Errorf("decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return auth.Session{}, fmt.Errorf("token response without access token")
	}
	return auth.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		Email:        tr.User.Email,
		ExpiresAt:    a.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
