package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

func (c *Client) ListProperties(ctx context.Context) ([]domain.Property, error) {
	var out []domain.Property
	if err := c.do(ctx, http.MethodGet, "/properties", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProperty(ctx context.Context, id int64) (domain.Property, error) {
	var out domain.Property
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/properties/%d", id), nil, &out)
	return out, err
}

func (c *Client) CreateProperty(ctx context.Context, in domain.PropertyInput) (domain.Property, error) {
	var out domain.Property
	err := c.do(ctx, http.MethodPost, "/properties", in, &out)
	return out, err
}

func (c *Client) UpdateProperty(ctx context.Context, id int64, in domain.PropertyInput) (domain.Property, error) {
	var out domain.Property
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/properties/%d", id), in, &out)
	return out, err
}

// SetVisibility flips the show flag without touching other fields.
func (c *Client) SetVisibility(ctx context.Context, id int64, show bool) (domain.Property, error) {
	var out domain.Property
	body := map[string]bool{"show": show}
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/properties/%d/visibility", id), body, &out)
	return out, err
}

func (c *Client) DeleteProperty(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/properties/%d", id), nil, nil)
}
