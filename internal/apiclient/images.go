package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// Image mirrors the backend image record within a gallery.
type Image struct {
	ID           int64  `json:"id"`
	GalleryID    int64  `json:"gallery_id"`
	Title        string `json:"title,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	SortOrder    int    `json:"sort_order"`
}

func (c *Client) ListImages(ctx context.Context, token string, galleryID int64) ([]Image, error) {
	var images []Image
	path := fmt.Sprintf("%s/galleries/%d/images", apiPrefix, galleryID)
	if err := c.do(ctx, "images", http.MethodGet, path, token, nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *Client) UpdateImageTitle(ctx context.Context, token string, id int64, title string) (*Image, error) {
	var image Image
	body := map[string]string{"title": title}
	if err := c.do(ctx, "images", http.MethodPatch, fmt.Sprintf("%s/images/%d", apiPrefix, id), token, body, &image); err != nil {
		return nil, err
	}
	return &image, nil
}

func (c *Client) DeleteImage(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "images", http.MethodDelete, fmt.Sprintf("%s/images/%d", apiPrefix, id), token, nil, nil)
}
