package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// Company mirrors the backend organization record.
type Company struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// CompanyInput is the create/update payload for a company.
type CompanyInput struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (c *Client) ListCompanies(ctx context.Context, token string, opts ListOptions) ([]Company, error) {
	var companies []Company
	if err := c.do(ctx, "companies", http.MethodGet, apiPrefix+"/companies"+opts.query(), token, nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (c *Client) GetCompany(ctx context.Context, token string, id int64) (*Company, error) {
	var company Company
	if err := c.do(ctx, "companies", http.MethodGet, fmt.Sprintf("%s/companies/%d", apiPrefix, id), token, nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *Client) CreateCompany(ctx context.Context, token string, input CompanyInput) (*Company, error) {
	var company Company
	if err := c.do(ctx, "companies", http.MethodPost, apiPrefix+"/companies", token, input, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *Client) UpdateCompany(ctx context.Context, token string, id int64, input CompanyInput) (*Company, error) {
	var company Company
	if err := c.do(ctx, "companies", http.MethodPut, fmt.Sprintf("%s/companies/%d", apiPrefix, id), token, input, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *Client) DeleteCompany(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "companies", http.MethodDelete, fmt.Sprintf("%s/companies/%d", apiPrefix, id), token, nil, nil)
}
