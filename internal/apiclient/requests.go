package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

// RequestFilter narrows ListRequests. Zero values are not sent.
type RequestFilter struct {
	PropertyID int64
	Status     domain.RequestStatus
}

func (f RequestFilter) query() string {
	v := url.Values{}
	if f.PropertyID > 0 {
		v.Set("propertyId", strconv.FormatInt(f.PropertyID, 10))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) ListRequests(ctx context.Context, f RequestFilter) ([]domain.PropertyRequest, error) {
	var out []domain.PropertyRequest
	if err := c.do(ctx, http.MethodGet, "/property-requests"+f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRequest(ctx context.Context, in domain.ViewingRequestInput) (domain.PropertyRequest, error) {
	var out domain.PropertyRequest
	err := c.do(ctx, http.MethodPost, "/property-requests", in, &out)
	return out, err
}

func (c *Client) UpdateRequestStatus(ctx context.Context, id string, status domain.RequestStatus) (domain.PropertyRequest, error) {
	var out domain.PropertyRequest
	body := map[string]domain.RequestStatus{"status": status}
	err := c.do(ctx, http.MethodPatch, "/property-requests/"+url.PathEscape(id)+"/status", body, &out)
	return out, err
}
