package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rjmoggach/litigation-support-sub001/internal/session"
)

// UserUpdate is the admin payload for mutating a user account.
type UserUpdate struct {
	FullName    *string  `json:"full_name,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	IsSuperuser *bool    `json:"is_superuser,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context, token string, opts ListOptions) ([]session.User, error) {
	var users []session.User
	if err := c.do(ctx, "users", http.MethodGet, apiPrefix+"/users"+opts.query(), token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, token string, id int64) (*session.User, error) {
	var user session.User
	if err := c.do(ctx, "users", http.MethodGet, fmt.Sprintf("%s/users/%d", apiPrefix, id), token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id int64, update UserUpdate) (*session.User, error) {
	var user session.User
	if err := c.do(ctx, "users", http.MethodPatch, fmt.Sprintf("%s/users/%d", apiPrefix, id), token, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "users", http.MethodDelete, fmt.Sprintf("%s/users/%d", apiPrefix, id), token, nil, nil)
}
