package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

// Storage keys.
const (
	TokenKey  = "token"
	APIKeyKey = "adminApiKey"
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrForbidden     = errors.New("forbidden")
)

type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Storage persists the token between runs.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context) error
}

// Session is the process-wide authentication context. A user is present if
// and only if a decoded, unexpired token is held.
type Session struct {
	store Storage
	auth  Authenticator
	log   zerolog.Logger
	now   func() time.Time

	mu      sync.RWMutex
	state   State
	token   string
	apiKey  string
	user    *domain.User
	exp     *time.Time
	lastErr error
}

func New(store Storage, auth Authenticator, log zerolog.Logger) *Session {
	return &Session{
		store: store,
		auth:  auth,
		log:   log.With().Str("component", "session").Logger(),
		now:   time.Now,
	}
}

// SetAuthenticator attaches the API facade once it exists; the facade itself
// needs the session for credentials.
func (s *Session) SetAuthenticator(a Authenticator) {
	s.mu.Lock()
	s.auth = a
	s.mu.Unlock()
}

func (s *Session) State() State {
	st, _, _ := s.current()
	return st
}

func (s *Session) User() *domain.User {
	_, u, _ := s.current()
	return u
}

// Token returns the bearer token, or "" when not authenticated.
func (s *Session) Token() string {
	_, _, tok := s.current()
	return tok
}

// current returns a snapshot of the session. A token that expired while the
// process was running is dropped first, so no reader sees a stale user.
func (s *Session) current() (State, *domain.User, string) {
	s.mu.RLock()
	state, user, token, exp := s.state, s.user, s.token, s.exp
	s.mu.RUnlock()

	if state == Authenticated && exp != nil && !s.now().Before(*exp) {
		s.Expire()
		return Unauthenticated, nil, ""
	}
	if user == nil {
		return state, nil, token
	}
	u := *user
	return state, &u, token
}

// APIKey returns the admin API key saved in local storage, if any.
func (s *Session) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

func (s *Session) SetAPIKey(key string) error {
	if key == "" {
		if err := s.store.Remove(APIKeyKey); err != nil {
			return fmt.Errorf("remove api key: %w", err)
		}
	} else if err := s.store.Set(APIKeyKey, key); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()
	return nil
}

// LastError is the error of the most recent failed login.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Restore loads a persisted token on startup. Expired or undecodable tokens
// are removed without surfacing an error.
func (s *Session) Restore() State {
	state := s.restoreToken()

	if key, ok, err := s.store.Get(APIKeyKey); err != nil {
		s.log.Warn().Err(err).Msg("read api key")
	} else if ok {
		s.mu.Lock()
		s.apiKey = key
		s.mu.Unlock()
	}
	return state
}

func (s *Session) restoreToken() State {
	token, ok, err := s.store.Get(TokenKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("read stored token")
		return s.reset()
	}
	if !ok || token == "" {
		return s.reset()
	}

	claims, err := Decode(token)
	if err != nil || claims.Expired(s.now()) {
		s.log.Info().Msg("discarding stored token")
		s.dropToken()
		return s.reset()
	}
	s.adopt(token, claims)
	s.log.Info().Str("sub", claims.Subject).Msg("session restored")
	return Authenticated
}

// Login exchanges credentials for a token. On failure the session is left
// unauthenticated, any previously stored token is removed, and the reason is
// available from LastError.
func (s *Session) Login(ctx context.Context, email, password string) bool {
	s.mu.Lock()
	s.state = Authenticating
	s.lastErr = nil
	auth := s.auth
	s.mu.Unlock()

	fail := func(err error) bool {
		s.mu.Lock()
		s.state, s.token, s.user, s.exp = Unauthenticated, "", nil, nil
		s.lastErr = err
		s.mu.Unlock()
		s.dropToken()
		s.log.Warn().Err(err).Str("email", email).Msg("login failed")
		return false
	}

	if auth == nil {
		return fail(errors.New("no authenticator configured"))
	}
	token, err := auth.Login(ctx, email, password)
	if err != nil {
		return fail(err)
	}
	claims, err := Decode(token)
	if err != nil {
		return fail(err)
	}
	if claims.Expired(s.now()) {
		return fail(errors.New("received an expired token"))
	}
	if err := s.store.Set(TokenKey, token); err != nil {
		return fail(fmt.Errorf("save token: %w", err))
	}

	s.adopt(token, claims)
	s.log.Info().Str("sub", claims.Subject).Str("role", claims.Role).Msg("logged in")
	return true
}

// Logout clears the local session and the stored credentials. It never calls
// the API.
func (s *Session) Logout() {
	s.forget()
	s.reset()
	s.log.Info().Msg("logged out")
}

// RemoteLogout tells the API first, then clears locally regardless of the
// outcome.
func (s *Session) RemoteLogout(ctx context.Context) {
	s.mu.RLock()
	auth := s.auth
	s.mu.RUnlock()
	if auth != nil {
		if err := auth.Logout(ctx); err != nil {
			s.log.Warn().Err(err).Msg("server logout failed")
		}
	}
	s.Logout()
}

// Expire is called when the API rejects the credentials (401 or 403). Both the
// token and the admin API key are cleared.
func (s *Session) Expire() {
	s.forget()
	s.reset()
	s.log.Info().Msg("session expired")
}

// Authorize checks the current user against role. An empty role only requires
// a login. A token that expired while the process was running is dropped.
func (s *Session) Authorize(role domain.Role) (*domain.User, error) {
	state, user, _ := s.current()
	if state != Authenticated || user == nil {
		return nil, ErrLoginRequired
	}
	if role != "" && user.Role != role {
		return nil, ErrForbidden
	}
	return user, nil
}

// RedirectFor maps an Authorize error to the page the caller is sent to.
func RedirectFor(err error) string {
	switch {
	case errors.Is(err, ErrLoginRequired):
		return "/login"
	case errors.Is(err, ErrForbidden):
		return "/"
	default:
		return ""
	}
}

func (s *Session) adopt(token string, c *Claims) {
	var exp *time.Time
	if c.ExpiresAt != nil {
		t := c.ExpiresAt.Time
		exp = &t
	}
	s.mu.Lock()
	s.state, s.token, s.user, s.exp = Authenticated, token, c.User(), exp
	s.mu.Unlock()
}

func (s *Session) reset() State {
	s.mu.Lock()
	s.state, s.token, s.user, s.exp = Unauthenticated, "", nil, nil
	s.mu.Unlock()
	return Unauthenticated
}

// forget removes every stored credential, in memory and on disk.
func (s *Session) forget() {
	s.dropToken()
	if err := s.store.Remove(APIKeyKey); err != nil {
		s.log.Warn().Err(err).Msg("remove stored api key")
	}
	s.mu.Lock()
	s.apiKey = ""
	s.mu.Unlock()
}

func (s *Session) dropToken() {
	if err := s.store.Remove(TokenKey); err != nil {
		s.log.Warn().Err(err).Msg("remove stored token")
	}
}
