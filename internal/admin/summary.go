package admin

import (
	"context"
	"errors"
	"math"

	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

// Summarize computes the dashboard figures locally. The average rating only
// counts approved reviews.
func Summarize(props []domain.Property, reqs []domain.PropertyRequest, revs []domain.PropertyReview) domain.AnalyticsSummary {
	var s domain.AnalyticsSummary
	s.TotalProperties = len(props)
	for _, p := range props {
		if p.Show {
			s.VisibleProperties++
		}
		switch {
		case p.Sold:
			s.Sold++
		case p.Rented:
			s.Rented++
		case p.IsForRent:
			s.ForRent++
		default:
			s.ForSale++
		}
	}

	s.TotalRequests = len(reqs)
	for _, r := range reqs {
		if r.Status == domain.RequestPending {
			s.PendingRequests++
		}
	}

	s.TotalReviews = len(revs)
	sum, n := 0, 0
	for _, r := range revs {
		switch r.Status {
		case domain.ReviewPending:
			s.PendingReviews++
		case domain.ReviewApproved:
			sum += r.Rating
			n++
		}
	}
	if n > 0 {
		s.AverageRating = math.Round(float64(sum)/float64(n)*10) / 10
	}
	return s
}

type AnalyticsAPI interface {
	AnalyticsSummary(ctx context.Context) (domain.AnalyticsSummary, error)
	ListProperties(ctx context.Context) ([]domain.Property, error)
	ListRequests(ctx context.Context, f apiclient.RequestFilter) ([]domain.PropertyRequest, error)
	ListReviews(ctx context.Context, f apiclient.ReviewFilter) ([]domain.PropertyReview, error)
}

// Dashboard returns the API's analytics summary. When that endpoint fails for
// any reason other than an expired session, the summary is computed from the
// raw lists instead.
func Dashboard(ctx context.Context, api AnalyticsAPI) (domain.AnalyticsSummary, error) {
	sum, err := api.AnalyticsSummary(ctx)
	if err == nil {
		return sum, nil
	}
	if errors.Is(err, apiclient.ErrUnauthorized) || errors.Is(err, context.Canceled) {
		return domain.AnalyticsSummary{}, err
	}

	props, perr := api.ListProperties(ctx)
	if perr != nil {
		return domain.AnalyticsSummary{}, perr
	}
	reqs, rerr := api.ListRequests(ctx, apiclient.RequestFilter{})
	if rerr != nil {
		return domain.AnalyticsSummary{}, rerr
	}
	revs, verr := api.ListReviews(ctx, apiclient.ReviewFilter{})
	if verr != nil {
		return domain.AnalyticsSummary{}, verr
	}
	return Summarize(props, reqs, revs), nil
}
