package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/denisok6893-rgb/realestate-portal/internal/admin"
	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/cache"
	"github.com/denisok6893-rgb/realestate-portal/internal/card"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
	"github.com/denisok6893-rgb/realestate-portal/internal/listing"
)

// ListingResponse is one page of the home feed or search results. Links are
// query strings, so every view can be bookmarked.
type ListingResponse struct {
	listing.Result
	Query string     `json:"query"`
	Links PageLinks  `json:"links"`
	Clear string     `json:"clearFilters"`
	Sorts []SortLink `json:"sorts"`
}

type PageLinks struct {
	Prev  string            `json:"prev,omitempty"`
	Next  string            `json:"next,omitempty"`
	Pages map[string]string `json:"pages,omitempty"`
}

type SortLink struct {
	Key    listing.SortKey `json:"key"`
	Href   string          `json:"href"`
	Active bool            `json:"active"`
}

var sortKeys = []listing.SortKey{
	listing.SortRecommended,
	listing.SortPriceLow,
	listing.SortPriceHigh,
	listing.SortNewest,
	listing.SortDistance,
}

func (s *Server) handleHomeFeed(w http.ResponseWriter, r *http.Request) {
	s.serveListing(w, r, "home", s.pipeline.HomeFeed)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.serveListing(w, r, "search", s.pipeline.Search)
}

type runFunc func([]domain.Property, listing.Params) listing.Result

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, view string, run runFunc) {
	ctx := r.Context()
	params := listing.ParseParams(r.URL.Query())
	key := cacheKey(view, params)

	var resp ListingResponse
	if hit, err := s.cache.Get(ctx, key, &resp); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read")
	} else if hit {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	props, err := s.api.ListProperties(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp = buildListing(run(props, params), params)

	if err := s.cache.Set(ctx, key, resp, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write")
	}
	writeJSON(w, http.StatusOK, resp)
}

func buildListing(res listing.Result, params listing.Params) ListingResponse {
	resp := ListingResponse{
		Result: res,
		Query:  params.WithPage(res.Page.CurrentPage).Values().Encode(),
		Clear:  params.Clear().Values().Encode(),
	}
	if res.Page.CurrentPage > 1 {
		resp.Links.Prev = params.WithPage(res.Page.CurrentPage - 1).Values().Encode()
	}
	if res.Page.CurrentPage < res.Page.TotalPages {
		resp.Links.Next = params.WithPage(res.Page.CurrentPage + 1).Values().Encode()
	}
	if len(res.Pages) > 0 {
		resp.Links.Pages = make(map[string]string, len(res.Pages))
		for _, m := range res.Pages {
			if !m.Ellipsis {
				resp.Links.Pages[strconv.Itoa(m.Number)] = params.WithPage(m.Number).Values().Encode()
			}
		}
	}
	for _, k := range sortKeys {
		resp.Sorts = append(resp.Sorts, SortLink{
			Key:    k,
			Href:   params.WithSort(k).Values().Encode(),
			Active: k == params.SortBy,
		})
	}
	return resp
}

func cacheKey(view string, params listing.Params) string {
	return cache.QueryKey(cache.ListingPrefix+":"+view, params.Values())
}

// PropertyDetail is the property page: the card, the full description, the
// gallery with broken images removed, and approved reviews.
type PropertyDetail struct {
	Card          card.Card               `json:"card"`
	Description   string                  `json:"description"`
	Gallery       []string                `json:"gallery"`
	Reviews       []domain.PropertyReview `json:"reviews"`
	AverageRating float64                 `json:"averageRating"`
}

func (s *Server) handlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_id"})
		return
	}
	ctx := r.Context()

	p, err := s.api.GetProperty(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !p.Show {
		if _, err := s.sess.Authorize(domain.RoleAdmin); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
			return
		}
	}

	images := admin.MergeImages([]string{p.MainImage}, p.Images)
	if s.prober != nil {
		images = s.prober.Filter(ctx, images)
	}

	reviews, err := s.api.ListReviews(ctx, apiclient.ReviewFilter{PropertyID: id, Status: domain.ReviewApproved})
	if err != nil {
		s.log.Warn().Err(err).Int64("id", id).Msg("reviews unavailable")
		reviews = nil
	}
	approved := make([]domain.PropertyReview, 0, len(reviews))
	for _, rv := range reviews {
		if rv.Status == domain.ReviewApproved {
			approved = append(approved, rv)
		}
	}

	writeJSON(w, http.StatusOK, PropertyDetail{
		Card:          card.FromProperty(p),
		Description:   p.Description,
		Gallery:       images,
		Reviews:       approved,
		AverageRating: admin.Summarize(nil, nil, approved).AverageRating,
	})
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_id"})
		return
	}
	var in domain.ViewingRequestInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	in.PropertyID = id
	if err := s.validator.Struct(in); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.api.CreateRequest(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_id"})
		return
	}
	var in domain.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	in.PropertyID = id
	if err := s.validator.Struct(in); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.api.CreateReview(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

type loginState struct {
	State string       `json:"state"`
	User  *domain.User `json:"user,omitempty"`
	Error string       `json:"error,omitempty"`
}

func (s *Server) handleLoginState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, loginState{State: s.sess.State().String(), User: s.sess.User()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	if err := s.validator.Struct(in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.sess.Login(r.Context(), in.Email, in.Password) {
		msg := "login failed"
		if err := s.sess.LastError(); err != nil {
			msg = loginMessage(err)
		}
		writeJSON(w, http.StatusUnauthorized, loginState{State: s.sess.State().String(), Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, loginState{State: s.sess.State().String(), User: s.sess.User()})
}

func loginMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sess.Logout()
	writeJSON(w, http.StatusOK, loginState{State: s.sess.State().String()})
}
