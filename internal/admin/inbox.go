package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrEmptyReply      = errors.New("reply is empty")
)

type InboxAPI interface {
	ListRequests(ctx context.Context, f apiclient.RequestFilter) ([]domain.PropertyRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status domain.RequestStatus) (domain.PropertyRequest, error)
	ListReviews(ctx context.Context, f apiclient.ReviewFilter) ([]domain.PropertyReview, error)
	UpdateReviewStatus(ctx context.Context, id string, status domain.ReviewStatus) (domain.PropertyReview, error)
	ReplyToReview(ctx context.Context, id, reply string) (domain.PropertyReview, error)
}

// Inbox moderates viewing requests and reviews. Status changes are checked
// against the allowed transitions before anything is sent.
type Inbox struct {
	api InboxAPI
	log zerolog.Logger
}

func NewInbox(api InboxAPI, log zerolog.Logger) *Inbox {
	return &Inbox{api: api, log: log.With().Str("component", "inbox").Logger()}
}

func (b *Inbox) Requests(ctx context.Context, f apiclient.RequestFilter) ([]domain.PropertyRequest, error) {
	return b.api.ListRequests(ctx, f)
}

func (b *Inbox) Reviews(ctx context.Context, f apiclient.ReviewFilter) ([]domain.PropertyReview, error) {
	return b.api.ListReviews(ctx, f)
}

func (b *Inbox) SetRequestStatus(ctx context.Context, id string, to domain.RequestStatus) (domain.PropertyRequest, error) {
	reqs, err := b.api.ListRequests(ctx, apiclient.RequestFilter{})
	if err != nil {
		return domain.PropertyRequest{}, fmt.Errorf("list requests: %w", err)
	}
	var cur *domain.PropertyRequest
	for i := range reqs {
		if reqs[i].ID == id {
			cur = &reqs[i]
			break
		}
	}
	if cur == nil {
		return domain.PropertyRequest{}, ErrRequestNotFound
	}
	if err := domain.TransitionRequest(cur.Status, to); err != nil {
		return domain.PropertyRequest{}, err
	}
	out, err := b.api.UpdateRequestStatus(ctx, id, to)
	if err != nil {
		return domain.PropertyRequest{}, fmt.Errorf("update request %s: %w", id, err)
	}
	b.log.Info().Str("id", id).Str("from", string(cur.Status)).Str("to", string(to)).Msg("request status changed")
	return out, nil
}

func (b *Inbox) SetReviewStatus(ctx context.Context, id string, to domain.ReviewStatus) (domain.PropertyReview, error) {
	cur, err := b.findReview(ctx, id)
	if err != nil {
		return domain.PropertyReview{}, err
	}
	if err := domain.TransitionReview(cur.Status, to); err != nil {
		return domain.PropertyReview{}, err
	}
	out, err := b.api.UpdateReviewStatus(ctx, id, to)
	if err != nil {
		return domain.PropertyReview{}, fmt.Errorf("update review %s: %w", id, err)
	}
	b.log.Info().Str("id", id).Str("to", string(to)).Msg("review moderated")
	return out, nil
}

// Reply sets the admin reply on a review regardless of its status.
func (b *Inbox) Reply(ctx context.Context, id, text string) (domain.PropertyReview, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.PropertyReview{}, ErrEmptyReply
	}
	if _, err := b.findReview(ctx, id); err != nil {
		return domain.PropertyReview{}, err
	}
	out, err := b.api.ReplyToReview(ctx, id, text)
	if err != nil {
		return domain.PropertyReview{}, fmt.Errorf("reply to review %s: %w", id, err)
	}
	return out, nil
}

func (b *Inbox) findReview(ctx context.Context, id string) (domain.PropertyReview, error) {
	revs, err := b.api.ListReviews(ctx, apiclient.ReviewFilter{})
	if err != nil {
		return domain.PropertyReview{}, fmt.Errorf("list reviews: %w", err)
	}
	for _, r := range revs {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.PropertyReview{}, ErrReviewNotFound
}
