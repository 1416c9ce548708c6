package apiclient

import (
	"context"
	"net/http"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

func (c *Client) AnalyticsSummary(ctx context.Context) (domain.AnalyticsSummary, error) {
	var out domain.AnalyticsSummary
	err := c.do(ctx, http.MethodGet, "/analytics/summary", nil, &out)
	return out, err
}
