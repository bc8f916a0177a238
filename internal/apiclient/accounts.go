package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rjmoggach/litigation-support-sub001/internal/session"
)

// ListEmailAccounts fetches the user's linked mailbox connections.
func (c *Client) ListEmailAccounts(ctx context.Context, token string) ([]session.EmailAccount, error) {
	var accounts []session.EmailAccount
	if err := c.do(ctx, "accounts", http.MethodGet, apiPrefix+"/email-accounts", token, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// DisconnectEmailAccount removes a linked mailbox.
func (c *Client) DisconnectEmailAccount(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "accounts", http.MethodDelete, fmt.Sprintf("%s/email-accounts/%d", apiPrefix, id), token, nil, nil)
}

// EmailAccountAuthorizeURL asks the backend for the provider authorization
// URL used by the popup flow for a secondary mailbox.
func (c *Client) EmailAccountAuthorizeURL(ctx context.Context, token, provider, state, redirectURI string) (string, error) {
	var out struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	path := fmt.Sprintf("%s/email-accounts/oauth/authorize?provider=%s&state=%s&redirect_uri=%s",
		apiPrefix, url.QueryEscape(provider), url.QueryEscape(state), url.QueryEscape(redirectURI))
	if err := c.do(ctx, "accounts", http.MethodGet, path, token, nil, &out); err != nil {
		return "", err
	}
	if out.AuthorizationURL == "" {
		return "", fmt.Errorf("backend returned no authorization URL for provider %s", provider)
	}
	return out.AuthorizationURL, nil
}

// CompleteEmailAccountCallback forwards the popup's code/state/scope to the
// backend callback endpoint and returns the raw HTML body the backend
// renders. The bridge extracts the embedded connection object from it.
func (c *Client) CompleteEmailAccountCallback(ctx context.Context, token, code, state, scope string) (string, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("state", state)
	if scope != "" {
		q.Set("scope", scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+apiPrefix+"/email-accounts/oauth/callback?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute callback request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read callback response: %w", err)
	}
	return string(body), nil
}
