package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rjmoggach/litigation-support-sub001/internal/session"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (session.TokenPair, error) {
	var pair session.TokenPair
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "auth", http.MethodPost, apiPrefix+"/auth/login", "", body, &pair); err != nil {
		return session.TokenPair{}, err
	}
	return pair, nil
}

// OAuthLoginURL asks the backend for the provider's authorization URL for a
// primary (portal sign-in) OAuth flow.
func (c *Client) OAuthLoginURL(ctx context.Context, provider, state, redirectURI string) (string, error) {
	var out struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	path := fmt.Sprintf("%s/auth/oauth/%s/authorize?state=%s&redirect_uri=%s",
		apiPrefix, url.PathEscape(provider), url.QueryEscape(state), url.QueryEscape(redirectURI))
	if err := c.do(ctx, "auth", http.MethodGet, path, "", nil, &out); err != nil {
		return "", err
	}
	if out.AuthorizationURL == "" {
		return "", fmt.Errorf("backend returned no authorization URL for provider %s", provider)
	}
	return out.AuthorizationURL, nil
}

// OAuthLogin completes a primary OAuth sign-in with the provider's code.
func (c *Client) OAuthLogin(ctx context.Context, provider, code, redirectURI string) (session.TokenPair, error) {
	var pair session.TokenPair
	body := map[string]string{"provider": provider, "code": code, "redirect_uri": redirectURI}
	if err := c.do(ctx, "auth", http.MethodPost, apiPrefix+"/auth/oauth-login", "", body, &pair); err != nil {
		return session.TokenPair{}, err
	}
	return pair, nil
}

// RefreshToken trades a refresh token for a new pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	var pair session.TokenPair
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, "auth", http.MethodPost, apiPrefix+"/auth/refresh", "", body, &pair); err != nil {
		return session.TokenPair{}, err
	}
	return pair, nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*session.User, error) {
	var user session.User
	if err := c.do(ctx, "users", http.MethodGet, apiPrefix+"/users/me", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Ping checks backend reachability for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, apiPrefix+"/health", "", nil, nil)
}
