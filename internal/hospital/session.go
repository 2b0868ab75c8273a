package hospital

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wolfman30/hospital-booking/pkg/logging"
)

// TokenKey is the fixed key the access token is stored under.
const TokenKey = "access_token"

// TokenStore persists the access token between runs.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// MemoryTokenStore keeps the token for the lifetime of the process.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Delete(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// Session carries the bearer token attached to authenticated calls. A token is
// issued at login and cleared at logout; the client only reads it.
type Session struct {
	store TokenStore
}

// NewSession wraps store. A nil store keeps the token in memory.
func NewSession(store TokenStore) *Session {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &Session{store: store}
}

// Issue records a freshly issued token.
func (s *Session) Issue(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("hospital: empty access token")
	}
	if err := s.store.Save(ctx, token); err != nil {
		return fmt.Errorf("hospital: save token: %w", err)
	}
	return nil
}

// Token returns the current token, or "" when logged out.
func (s *Session) Token(ctx context.Context) (string, error) {
	if s == nil {
		return "", nil
	}
	token, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("hospital: load token: %w", err)
	}
	return token, nil
}

// Authenticated reports whether a token is currently held.
func (s *Session) Authenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// Clear drops the token.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx); err != nil {
		return fmt.Errorf("hospital: delete token: %w", err)
	}
	return nil
}

// Login failure messages shown to the user.
const (
	MessageInvalidCredentials = "Invalid credentials"
	MessageLoginFailed        = "Login failed"
)

// Authenticator logs in through the client and issues the token into the
// session in one step.
type Authenticator struct {
	client  *Client
	session *Session
	logger  *logging.Logger
}

func NewAuthenticator(client *Client, session *Session, logger *logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Authenticator{client: client, session: session, logger: logger}
}

// Login exchanges credentials for a token and stores it in the session.
func (a *Authenticator) Login(ctx context.Context, email, password string) error {
	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		a.logger.Warn("login failed", "email", email, "error", err)
		return err
	}
	if err := a.session.Issue(ctx, resp.AccessToken); err != nil {
		return err
	}
	a.logger.Info("login succeeded", "email", email)
	return nil
}

// Logout clears the session.
func (a *Authenticator) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}

// LoginFailureMessage maps a Login error to the text shown to the user.
func LoginFailureMessage(err error) string {
	if errors.Is(err, ErrInvalidCredentials) {
		return MessageInvalidCredentials
	}
	return MessageLoginFailed
}
