package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"tymer/internal/backend"
	"tymer/internal/localstore"
	"tymer/internal/validation"
)

var (
	ErrNotSignedIn     = errors.New("no account is signed in")
	ErrUnknownProvider = errors.New("unknown OAuth provider")
)

// refreshLeeway is how long before expiry a token is refreshed, so
// requests never race the deadline
const refreshLeeway = time.Minute

// API is the slice of the backend client the auth service needs
type API interface {
	SignIn(ctx context.Context, email, password string) (backend.TokenPair, error)
	SignInWithProvider(ctx context.Context, provider, providerToken string) (backend.TokenPair, error)
	RefreshSession(ctx context.Context, refreshToken string) (backend.TokenPair, error)
}

// CredentialStore persists the token pair between launches
type CredentialStore interface {
	SaveCredentials(localstore.Credentials) error
	LoadCredentials() (localstore.Credentials, error)
	ClearCredentials() error
}

// Service owns the account lifecycle: sign-in, token refresh, sign-out.
// It implements backend.TokenSource so the client transparently gets a
// valid bearer token on every request.
type Service struct {
	api       API
	creds     CredentialStore
	providers map[string]*oauth2.Config

	mu      sync.Mutex
	current localstore.Credentials
	loaded  bool
}

// NewService creates an auth service. providers maps provider names
// ("google", "apple") to their OAuth configuration; it may be nil when
// only email sign-in is used.
func NewService(api API, creds CredentialStore, providers map[string]*oauth2.Config) *Service {
	return &Service{
		api:       api,
		creds:     creds,
		providers: providers,
	}
}

// SignIn authenticates with email and password and stores the issued
// token pair
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	pair, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	return s.adopt(pair)
}

// AuthCodeURL returns the provider's consent page URL for the given
// CSRF state
func (s *Service) AuthCodeURL(provider, state string) (string, error) {
	cfg, ok := s.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return cfg.AuthCodeURL(state), nil
}

// SignInWithProvider completes an OAuth flow: exchanges the
// authorization code with the provider, then trades the provider token
// for a backend session
func (s *Service) SignInWithProvider(ctx context.Context, provider, code string) error {
	cfg, ok := s.providers[provider]
	if !ok {
		return ErrUnknownProvider
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("provider exchange failed: %w", err)
	}

	pair, err := s.api.SignInWithProvider(ctx, provider, token.AccessToken)
	if err != nil {
		return fmt.Errorf("provider sign-in failed: %w", err)
	}
	return s.adopt(pair)
}

// adopt stores a freshly issued token pair in memory and on disk
func (s *Service) adopt(pair backend.TokenPair) error {
	creds := localstore.Credentials{
		UserID:       subjectOf(pair.AccessToken),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if err := s.creds.SaveCredentials(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	s.mu.Lock()
	s.current = creds
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Token returns a valid access token, refreshing the session first when
// the current token is about to expire. Implements backend.TokenSource.
func (s *Service) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		creds, err := s.creds.LoadCredentials()
		if errors.Is(err, localstore.ErrNoCredentials) {
			return "", ErrNotSignedIn
		}
		if err != nil {
			return "", fmt.Errorf("failed to load credentials: %w", err)
		}
		s.current = creds
		s.loaded = true
	}

	if time.Until(expiryOf(s.current.AccessToken)) > refreshLeeway {
		return s.current.AccessToken, nil
	}

	pair, err := s.api.RefreshSession(ctx, s.current.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("session refresh failed: %w", err)
	}
	creds := localstore.Credentials{
		UserID:       subjectOf(pair.AccessToken),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if err := s.creds.SaveCredentials(creds); err != nil {
		return "", fmt.Errorf("failed to store refreshed credentials: %w", err)
	}
	s.current = creds
	return creds.AccessToken, nil
}

// UserID returns the signed-in account's id, empty when signed out
func (s *Service) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		creds, err := s.creds.LoadCredentials()
		if err != nil {
			return ""
		}
		s.current = creds
		s.loaded = true
	}
	return s.current.UserID
}

// SignOut wipes the stored credentials. The caller must also clear the
// session state before another account signs in.
func (s *Service) SignOut() error {
	s.mu.Lock()
	s.current = localstore.Credentials{}
	s.loaded = false
	s.mu.Unlock()

	if err := s.creds.ClearCredentials(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// The backend signs its tokens; the client only reads public claims, so
// both helpers parse without verification.

func expiryOf(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func subjectOf(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
