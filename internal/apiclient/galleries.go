package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// Gallery mirrors the backend gallery record.
type Gallery struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	ImageCount  int    `json:"image_count"`
	Published   bool   `json:"published"`
}

// GalleryInput is the create/update payload for a gallery.
type GalleryInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Published   bool   `json:"published"`
}

func (c *Client) ListGalleries(ctx context.Context, token string, opts ListOptions) ([]Gallery, error) {
	var galleries []Gallery
	if err := c.do(ctx, "galleries", http.MethodGet, apiPrefix+"/galleries"+opts.query(), token, nil, &galleries); err != nil {
		return nil, err
	}
	return galleries, nil
}

func (c *Client) GetGallery(ctx context.Context, token string, id int64) (*Gallery, error) {
	var gallery Gallery
	if err := c.do(ctx, "galleries", http.MethodGet, fmt.Sprintf("%s/galleries/%d", apiPrefix, id), token, nil, &gallery); err != nil {
		return nil, err
	}
	return &gallery, nil
}

func (c *Client) CreateGallery(ctx context.Context, token string, input GalleryInput) (*Gallery, error) {
	var gallery Gallery
	if err := c.do(ctx, "galleries", http.MethodPost, apiPrefix+"/galleries", token, input, &gallery); err != nil {
		return nil, err
	}
	return &gallery, nil
}

func (c *Client) DeleteGallery(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "galleries", http.MethodDelete, fmt.Sprintf("%s/galleries/%d", apiPrefix, id), token, nil, nil)
}
