package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/denisok6893-rgb/realestate-portal/internal/admin"
	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
	"github.com/denisok6893-rgb/realestate-portal/internal/gallery"
	"github.com/denisok6893-rgb/realestate-portal/internal/listing"
	"github.com/denisok6893-rgb/realestate-portal/internal/session"
	"github.com/denisok6893-rgb/realestate-portal/internal/storage"
)

// remote is a fake REST API.
type remote struct {
	mu       sync.Mutex
	props    []domain.Property
	reviews  []domain.PropertyReview
	requests []domain.ViewingRequestInput
	reject   int // status for every property call, e.g. 401 or 403
	srv      *httptest.Server
}

func mintToken(t *testing.T, sub, role string) string {
	t.Helper()
	c := session.Claims{Role: role}
	c.Subject = sub
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("remote-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func newRemote(t *testing.T) *remote {
	t.Helper()
	rm := &remote{}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in domain.LoginInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		switch in.Email {
		case "admin@example.com":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": mintToken(t, "1", "ADMIN")})
		case "user@example.com":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": mintToken(t, "2", "USER")})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
		}
	})
	mux.HandleFunc("/api/properties", func(w http.ResponseWriter, r *http.Request) {
		rm.mu.Lock()
		defer rm.mu.Unlock()
		_ = json.NewEncoder(w).Encode(rm.props)
	})
	mux.HandleFunc("/api/properties/", func(w http.ResponseWriter, r *http.Request) {
		rm.mu.Lock()
		defer rm.mu.Unlock()
		if rm.reject != 0 {
			w.WriteHeader(rm.reject)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/properties/")
		for i, p := range rm.props {
			if rest != strconv.FormatInt(p.ID, 10) && rest != strconv.FormatInt(p.ID, 10)+"/visibility" {
				continue
			}
			switch r.Method {
			case http.MethodGet:
				_ = json.NewEncoder(w).Encode(p)
			case http.MethodDelete:
				rm.props = append(rm.props[:i], rm.props[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
			case http.MethodPatch:
				var body map[string]bool
				_ = json.NewDecoder(r.Body).Decode(&body)
				rm.props[i].Show = body["show"]
				_ = json.NewEncoder(w).Encode(rm.props[i])
			}
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Property not found"}`))
	})
	mux.HandleFunc("/api/property-requests", func(w http.ResponseWriter, r *http.Request) {
		var in domain.ViewingRequestInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		rm.mu.Lock()
		rm.requests = append(rm.requests, in)
		rm.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.PropertyRequest{ID: "r-1", PropertyID: in.PropertyID, Status: domain.RequestPending})
	})
	mux.HandleFunc("/api/property-reviews", func(w http.ResponseWriter, r *http.Request) {
		rm.mu.Lock()
		defer rm.mu.Unlock()
		_ = json.NewEncoder(w).Encode(rm.reviews)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "broken.jpg") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
	})

	rm.srv = httptest.NewServer(mux)
	t.Cleanup(rm.srv.Close)
	return rm
}

type portal struct {
	url    string
	sess   *session.Session
	client *http.Client
}

func newPortal(t *testing.T, rm *remote) *portal {
	t.Helper()
	log := zerolog.Nop()

	store, err := storage.OpenLocalStorage(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	api := apiclient.New(apiclient.Options{BaseURL: rm.srv.URL + "/api", Timeout: 5 * time.Second, Logger: log})
	sess := session.New(store, api, log)
	api.SetCredentials(sess)
	api.OnUnauthorized(sess.Expire)

	srv := NewServer(Deps{
		API:      api,
		Session:  sess,
		Pipeline: listing.NewPipeline(listing.DefaultLocationKeywords(), 2),
		Table:    admin.NewTable(api, log),
		Inbox:    admin.NewInbox(api, log),
		Prober:   gallery.NewProber(rm.srv.Client(), time.Second, log),
		Logger:   log,
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return &portal{
		url:  ts.URL,
		sess: sess,
		client: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
}

func (p *portal) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, p.url+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (p *portal) login(t *testing.T, email string) {
	t.Helper()
	resp := p.do(t, http.MethodPost, "/login", domain.LoginInput{Email: email, Password: "secret"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s status=%d", email, resp.StatusCode)
	}
}

func day(d int) *time.Time {
	t := time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fixtures() []domain.Property {
	return []domain.Property{
		{ID: 1, Address: "5 Admiralty Way, Lekki", City: "Lagos", Price: 320000, Show: true, CreatedAt: day(1)},
		{ID: 2, Address: "9 Freedom Way, Lekki", City: "Lagos", Price: 450000, Show: true, IsForRent: true, CreatedAt: day(2)},
		{ID: 3, Address: "1 Hidden Close, Lekki", City: "Lagos", Price: 900000, Show: false, CreatedAt: day(3)},
		{ID: 4, Address: "12 Bourdillon Road", City: "Ikoyi", Price: 500000, Show: true, CreatedAt: day(4)},
		{ID: 5, Address: "3 Admiralty Road, Lekki", City: "Lagos", Price: 150000, Show: true, CreatedAt: day(5)},
	}
}

type listingBody struct {
	Items []struct {
		ID         int64  `json:"id"`
		PriceLabel string `json:"priceLabel"`
		Status     string `json:"status"`
	} `json:"items"`
	Page            listing.Page `json:"page"`
	Empty           bool         `json:"empty"`
	FallbackApplied bool         `json:"fallbackApplied"`
	Links           PageLinks    `json:"links"`
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestGETSearch_FiltersSortsAndPaginates(t *testing.T) {
	t.Parallel()

	rm := newRemote(t)
	rm.props = fixtures()
	p := newPortal(t, rm)

	// lekki + price_high: 3 скрыт, остаются 2, 1, 5
	resp := p.do(t, http.MethodGet, "/search?location=lekki&sortBy=price_high", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /search status=%d", resp.StatusCode)
	}
	got := decode[listingBody](t, resp)

	if got.Page.TotalItems != 3 || got.Page.TotalPages != 2 {
		t.Fatalf("page=%+v", got.Page)
	}
	if len(got.Items) != 2 || got.Items[0].ID != 2 || got.Items[1].ID != 1 {
		t.Fatalf("items=%+v", got.Items)
	}
	if got.Items[0].PriceLabel != "₦450,000/mo" || got.Items[0].Status != "For Rent" {
		t.Fatalf("card=%+v", got.Items[0])
	}
	if got.Links.Next == "" || !strings.Contains(got.Links.Next, "page=2") || got.Links.Prev != "" {
		t.Fatalf("links=%+v", got.Links)
	}

	resp = p.do(t, http.MethodGet, "/search?"+got.Links.Next, nil)
	next := decode[listingBody](t, resp)
	if len(next.Items) != 1 || next.Items[0].ID != 5 || next.Page.CurrentPage != 2 {
		t.Fatalf("page 2=%+v", next)
	}
}

func TestGETSearch_EmptyAndHomeFallback(t *testing.T) {
	t.Parallel()

	rm := newRemote(t)
	rm.props = fixtures()
	p := newPortal(t, rm)

	resp := p.do(t, http.MethodGet, "/search?minPrice=10000000", nil)
	empty := decode[listingBody](t, resp)
	if !empty.Empty || len(empty.Items) != 0 || empty.FallbackApplied {
		t.Fatalf("search=%+v", empty)
	}

	resp = p.do(t, http.MethodGet, "/properties?minPrice=10000000", nil)
	home := decode[listingBody](t, resp)
	if !home.FallbackApplied || home.Page.TotalItems != 5 {
		t.Fatalf("home=%+v", home)
	}
}

func TestAdminGuard_RedirectsByRole(t *testing.T) {
	t.Parallel()

	rm := newRemote(t)
	rm.props = fixtures()
	p := newPortal(t, rm)

	resp := p.do(t, http.MethodGet, "/admin/properties", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("anonymous: status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = p.do(t, http.MethodPost, "/login", domain.LoginInput{Email: "nobody@example.com", Password: "x"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status=%d", resp.StatusCode)
	}
	if body := decode[loginState](t, resp); body.Error != "Invalid credentials" {
		t.Fatalf("login error=%q", body.Error)
	}

	p.login(t, "user@example.com")
	resp = p.do(t, http.MethodGet, "/admin/properties", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("user: status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}

	p.login(t, "admin@example.com")
	resp = p.do(t, http.MethodGet, "/admin/properties?q=ikoyi", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin status=%d", resp.StatusCode)
	}
	list := decode[adminListResponse](t, resp)
	if list.Total != 1 || list.Items[0].ID != 4 {
		t.Fatalf("admin search=%+v", list)
	}

	resp = p.do(t, http.MethodGet, "/admin/properties?q=Abuja", nil)
	if msg := decode[adminListResponse](t, resp).Message; msg != `No matching properties found for "Abuja"` {
		t.Fatalf("empty message=%q", msg)
	}
}

func TestAdminDelete_ConfirmationAndRejectedSession(t *testing.T) {
	t.Parallel()

	rm := newRemote(t)
	rm.props = fixtures()
	p := newPortal(t, rm)
	p.login(t, "admin@example.com")

	resp := p.do(t, http.MethodDelete, "/admin/properties/2", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete status=%d", resp.StatusCode)
	}

	resp = p.do(t, http.MethodDelete, "/admin/properties/2?confirm=true", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status=%d", resp.StatusCode)
	}

	resp = p.do(t, http.MethodPatch, "/admin/properties/4/visibility", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status=%d", resp.StatusCode)
	}
	if toggled := decode[domain.Property](t, resp); toggled.Show {
		t.Fatalf("property 4 should now be hidden")
	}

	rm.mu.Lock()
	rm.reject = http.StatusForbidden
	rm.mu.Unlock()
	resp = p.do(t, http.MethodDelete, "/admin/properties/1?confirm=true", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("rejected: status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if p.sess.State() != session.Unauthenticated {
		t.Fatalf("session must be cleared on 403, state=%s", p.sess.State())
	}
}

func TestCreateRequest_ValidatedBeforeSending(t *testing.T) {
	t.Parallel()

	rm := newRemote(t)
	rm.props = fixtures()
	p := newPortal(t, rm)

	bad := map[string]string{"firstName": "Ada", "email": "not-an-email"}
	resp := p.do(t, http.MethodPost, "/properties/1/requests", bad)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status=%d", resp.StatusCode)
	}
	verr := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, resp)
	if verr.Fields["email"] == "" || verr.Fields["lastName"] == "" {
		t.Fatalf("fields=%v", verr.Fields)
	}
	rm.mu.Lock()
	sent := len(rm.requests)
	rm.mu.Unlock()
	if sent != 0 {
		t.Fatalf("invalid input reached the API")
	}

	good := domain.ViewingRequestInput{
		FirstName:     "Ada",
		LastName:      "Obi",
		Email:         "ada@example.com",
		PhoneNumber:   "08031234567",
		PreferredDate: "2025-03-14",
		PreferredTime: "10:30",
	}
	resp = p.do(t, http.MethodPost, "/properties/1/requests", good)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d", resp.StatusCode)
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if len(rm.requests) != 1 || rm.requests[0].PropertyID != 1 {
		t.Fatalf("sent=%+v", rm.requests)
	}
}

func TestPropertyDetail_GalleryAndApprovedReviews(t *testing.T) {
	t.Parallel()

	rm := newRemote(t)
	p := newPortal(t, rm)
	rm.props = []domain.Property{
		{ID: 7, Address: "1 Banana Island Road", Show: true, Price: 1000000,
			MainImage: rm.srv.URL + "/img/main.jpg",
			Images:    []string{rm.srv.URL + "/img/main.jpg", rm.srv.URL + "/img/broken.jpg", rm.srv.URL + "/img/pool.jpg"}},
		{ID: 8, Show: false},
	}
	rm.reviews = []domain.PropertyReview{
		{ID: "a", PropertyID: 7, Rating: 5, Status: domain.ReviewApproved},
		{ID: "b", PropertyID: 7, Rating: 1, Status: domain.ReviewPending},
		{ID: "c", PropertyID: 7, Rating: 4, Status: domain.ReviewApproved},
	}

	resp := p.do(t, http.MethodGet, "/properties/7", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	d := decode[PropertyDetail](t, resp)
	want := []string{rm.srv.URL + "/img/main.jpg", rm.srv.URL + "/img/pool.jpg"}
	if len(d.Gallery) != 2 || d.Gallery[0] != want[0] || d.Gallery[1] != want[1] {
		t.Fatalf("gallery=%v", d.Gallery)
	}
	if len(d.Reviews) != 2 || d.AverageRating != 4.5 {
		t.Fatalf("reviews=%d avg=%v", len(d.Reviews), d.AverageRating)
	}

	resp = p.do(t, http.MethodGet, "/properties/8", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("hidden property status=%d", resp.StatusCode)
	}
}
