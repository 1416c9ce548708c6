package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/denisok6893-rgb/realestate-portal/internal/admin"
	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/cache"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
	"github.com/denisok6893-rgb/realestate-portal/internal/gallery"
	"github.com/denisok6893-rgb/realestate-portal/internal/listing"
	"github.com/denisok6893-rgb/realestate-portal/internal/session"
	"github.com/denisok6893-rgb/realestate-portal/internal/validate"
)

// API is the remote API surface the portal uses.
type API interface {
	ListProperties(ctx context.Context) ([]domain.Property, error)
	GetProperty(ctx context.Context, id int64) (domain.Property, error)
	CreateRequest(ctx context.Context, in domain.ViewingRequestInput) (domain.PropertyRequest, error)
	CreateReview(ctx context.Context, in domain.ReviewInput) (domain.PropertyReview, error)
	admin.AnalyticsAPI
	admin.Uploader
}

type Deps struct {
	API       API
	Session   *session.Session
	Pipeline  *listing.Pipeline
	Table     *admin.Table
	Inbox     *admin.Inbox
	Prober    *gallery.Prober
	Validator *validate.Validator
	Cache     cache.Cache
	CacheTTL  time.Duration
	Logger    zerolog.Logger
}

type Server struct {
	api       API
	sess      *session.Session
	pipeline  *listing.Pipeline
	table     *admin.Table
	inbox     *admin.Inbox
	prober    *gallery.Prober
	validator *validate.Validator
	cache     cache.Cache
	ttl       time.Duration
	log       zerolog.Logger
}

func NewServer(d Deps) *Server {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Validator == nil {
		d.Validator = validate.New()
	}
	if d.Pipeline == nil {
		d.Pipeline = listing.NewPipeline(nil, listing.DefaultPageSize)
	}
	return &Server{
		api:       d.API,
		sess:      d.Session,
		pipeline:  d.Pipeline,
		table:     d.Table,
		inbox:     d.Inbox,
		prober:    d.Prober,
		validator: d.Validator,
		cache:     d.Cache,
		ttl:       d.CacheTTL,
		log:       d.Logger.With().Str("component", "http").Logger(),
	}
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/properties", s.handleHomeFeed).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/properties/{id:[0-9]+}", s.handlePropertyDetail).Methods(http.MethodGet)
	r.HandleFunc("/properties/{id:[0-9]+}/requests", s.handleCreateRequest).Methods(http.MethodPost)
	r.HandleFunc("/properties/{id:[0-9]+}/reviews", s.handleCreateReview).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLoginState).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	a := r.PathPrefix("/admin").Subrouter()
	a.Use(s.requireRole(domain.RoleAdmin))
	a.HandleFunc("/properties", s.handleAdminProperties).Methods(http.MethodGet)
	a.HandleFunc("/properties", s.handleAdminCreate).Methods(http.MethodPost)
	a.HandleFunc("/properties/{id:[0-9]+}", s.handleAdminUpdate).Methods(http.MethodPut)
	a.HandleFunc("/properties/{id:[0-9]+}", s.handleAdminDelete).Methods(http.MethodDelete)
	a.HandleFunc("/properties/{id:[0-9]+}/visibility", s.handleAdminToggle).Methods(http.MethodPatch)
	a.HandleFunc("/properties/{id:[0-9]+}/images", s.handleAdminImages).Methods(http.MethodPost)
	a.HandleFunc("/requests", s.handleAdminRequests).Methods(http.MethodGet)
	a.HandleFunc("/requests/{id}/status", s.handleAdminRequestStatus).Methods(http.MethodPatch)
	a.HandleFunc("/reviews", s.handleAdminReviews).Methods(http.MethodGet)
	a.HandleFunc("/reviews/{id}/status", s.handleAdminReviewStatus).Methods(http.MethodPatch)
	a.HandleFunc("/reviews/{id}/reply", s.handleAdminReviewReply).Methods(http.MethodPost)
	a.HandleFunc("/analytics", s.handleAdminAnalytics).Methods(http.MethodGet)
	a.HandleFunc("/logout", s.handleAdminLogout).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireRole sends anonymous visitors to /login and users without the role
// to the home page.
func (s *Server) requireRole(role domain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := s.sess.Authorize(role); err != nil {
				http.Redirect(w, r, session.RedirectFor(err), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// writeError maps component errors onto HTTP responses. A 401 from the API has
// already expired the session, so the caller is sent to the login page.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validate.Errors
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation_failed", "fields": fields})
	case errors.Is(err, apiclient.ErrUnauthorized):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, admin.ErrNotFound), errors.Is(err, admin.ErrRequestNotFound), errors.Is(err, admin.ErrReviewNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	case errors.Is(err, admin.ErrNotConfirmed):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "confirmation_required"})
	case errors.Is(err, admin.ErrEmptyReply):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty_reply"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "invalid_transition", "message": err.Error()})
	case errors.As(err, &apiErr) && apiErr.Status < 500:
		writeJSON(w, apiErr.Status, map[string]string{"error": "api_error", "message": apiErr.Message})
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("upstream failure")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream_error", "message": err.Error()})
	}
}

func (s *Server) invalidateListings(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.ListingPrefix); err != nil {
		s.log.Warn().Err(err).Msg("invalidate listing cache")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(dst)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
