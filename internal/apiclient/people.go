package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// Person mirrors the backend contact record.
type Person struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Title     string `json:"title,omitempty"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

// PersonInput is the create/update payload for a person.
type PersonInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Title     string `json:"title,omitempty"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

func (c *Client) ListPeople(ctx context.Context, token string, opts ListOptions) ([]Person, error) {
	var people []Person
	if err := c.do(ctx, "people", http.MethodGet, apiPrefix+"/people"+opts.query(), token, nil, &people); err != nil {
		return nil, err
	}
	return people, nil
}

func (c *Client) GetPerson(ctx context.Context, token string, id int64) (*Person, error) {
	var person Person
	if err := c.do(ctx, "people", http.MethodGet, fmt.Sprintf("%s/people/%d", apiPrefix, id), token, nil, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func (c *Client) CreatePerson(ctx context.Context, token string, input PersonInput) (*Person, error) {
	var person Person
	if err := c.do(ctx, "people", http.MethodPost, apiPrefix+"/people", token, input, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func (c *Client) UpdatePerson(ctx context.Context, token string, id int64, input PersonInput) (*Person, error) {
	var person Person
	if err := c.do(ctx, "people", http.MethodPut, fmt.Sprintf("%s/people/%d", apiPrefix, id), token, input, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func (c *Client) DeletePerson(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "people", http.MethodDelete, fmt.Sprintf("%s/people/%d", apiPrefix, id), token, nil, nil)
}
