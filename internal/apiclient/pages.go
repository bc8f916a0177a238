package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// Page mirrors the backend CMS page record.
type Page struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Body      string `json:"body,omitempty"`
	Published bool   `json:"published"`
}

// PageInput is the create/update payload for a page.
type PageInput struct {
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Published bool   `json:"published"`
}

func (c *Client) ListPages(ctx context.Context, token string, opts ListOptions) ([]Page, error) {
	var pages []Page
	if err := c.do(ctx, "pages", http.MethodGet, apiPrefix+"/pages"+opts.query(), token, nil, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (c *Client) GetPage(ctx context.Context, token string, id int64) (*Page, error) {
	var page Page
	if err := c.do(ctx, "pages", http.MethodGet, fmt.Sprintf("%s/pages/%d", apiPrefix, id), token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreatePage(ctx context.Context, token string, input PageInput) (*Page, error) {
	var page Page
	if err := c.do(ctx, "pages", http.MethodPost, apiPrefix+"/pages", token, input, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) UpdatePage(ctx context.Context, token string, id int64, input PageInput) (*Page, error) {
	var page Page
	if err := c.do(ctx, "pages", http.MethodPut, fmt.Sprintf("%s/pages/%d", apiPrefix, id), token, input, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) DeletePage(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "pages", http.MethodDelete, fmt.Sprintf("%s/pages/%d", apiPrefix, id), token, nil, nil)
}
