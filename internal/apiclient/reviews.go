package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

type ReviewFilter struct {
	PropertyID int64
	Status     domain.ReviewStatus
}

func (f ReviewFilter) query() string {
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

func (c *Client) ListReviews(ctx context.Context, f ReviewFilter) ([]domain.PropertyReview, error) {
	var out []domain.PropertyReview
	if err := c.do(ctx, http.MethodGet, "/property-reviews"+f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, in domain.ReviewInput) (domain.PropertyReview, error) {
	var out domain.PropertyReview
	err := c.do(ctx, http.MethodPost, "/property-reviews", in, &out)
	return out, err
}

func (c *Client) UpdateReviewStatus(ctx context.Context, id string, status domain.ReviewStatus) (domain.PropertyReview, error) {
	var out domain.PropertyReview
	body := map[string]domain.ReviewStatus{"status": status}
	err := c.do(ctx, http.MethodPatch, "/property-reviews/"+url.PathEscape(id)+"/status", body, &out)
	return out, err
}

func (c *Client) ReplyToReview(ctx context.Context, id, reply string) (domain.PropertyReview, error) {
	var out domain.PropertyReview
	body := map[string]string{"reply": reply}
	err := c.do(ctx, http.MethodPost, "/property-reviews/"+url.PathEscape(id)+"/reply", body, &out)
	return out, err
}
