// Package session owns the authentication state: it is the single source of
// truth for "is a user signed in" and the only writer of the persisted token.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	jwt "github.com/golang-jwt/jwt/v5"

	"bookshelf/internal/apiclient"
	"bookshelf/internal/token"
	"bookshelf/pkg/domain"
)

// MinPasswordLength is enforced locally before any registration request.
const MinPasswordLength = 6

// placeholderEmail stands in when a restored token carries no email claim.
const placeholderEmail = "user@example.com"

// Manager performs login, registration and logout against the remote API and
// keeps the in-memory session in lockstep with the persisted token.
type Manager struct {
	api    *apiclient.Client
	store  token.Store
	logger *slog.Logger

	mu         sync.RWMutex
	token      string
	identity   *domain.Identity
	generation uint64
}

// NewManager wires the session manager to the API client and token store.
func NewManager(api *apiclient.Client, store token.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: api, store: store, logger: logger}
}

// Restore reads the persisted token at startup. A stored token is trusted
// without a server round-trip; the identity is reconstructed best-effort
// from its claims. Store read failures are logged and treated as absence.
func (m *Manager) Restore(ctx context.Context) {
	tok, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error("restore session", "err", err)
		return
	}
	if tok == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok
	m.identity = identityFromToken(tok)
	m.generation++
}

// Login exchanges credentials for a token, persists it and records the
// identity. On failure neither the persisted nor the in-memory state moves.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	tok, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("login rejected", "email", email, "err", err)
		return &AuthenticationError{Message: apiclient.Message(err)}
	}
	if err := m.store.Save(ctx, tok); err != nil {
		m.logger.Error("persist token", "err", err)
		return &AuthenticationError{Message: apiclient.GenericErrorMessage}
	}
	m.setAuthenticated(tok, email)
	return nil
}

// Register creates an account; a successful registration behaves as login.
// Passwords shorter than MinPasswordLength are rejected before any network
// call.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return &RegistrationError{Message: "Password must be at least 6 characters."}
	}
	tok, err := m.api.Register(ctx, email, password)
	if err != nil {
		m.logger.Warn("registration rejected", "email", email, "err", err)
		return &RegistrationError{Message: apiclient.Message(err)}
	}
	if err := m.store.Save(ctx, tok); err != nil {
		m.logger.Error("persist token", "err", err)
		return &RegistrationError{Message: apiclient.GenericErrorMessage}
	}
	m.setAuthenticated(tok, email)
	return nil
}

// Logout clears the persisted token and the in-memory session. No network
// call is made; the in-memory state clears even if the store fails.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("clear persisted token", "err", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return
	}
	m.token = ""
	m.identity = nil
	m.generation++
}

// Token returns the current bearer token, empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Identity returns the signed-in identity, nil when unauthenticated.
func (m *Manager) Identity() *domain.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// IsAuthenticated reports whether a session is present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Generation increases on every session change: sign-in, sign-out, or
// re-login. Consumers use it to discard results that belong to a previous
// session.
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

func (m *Manager) setAuthenticated(tok, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok
	m.identity = &domain.Identity{Email: email}
	m.generation++
}

// identityFromToken decodes the token's claims without verifying the
// signature; validity is the server's concern on the next request.
func identityFromToken(tok string) *domain.Identity {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok, claims); err == nil {
		if email, ok := claims["email"].(string); ok && email != "" {
			return &domain.Identity{Email: email}
		}
		if sub, ok := claims["sub"].(string); ok && strings.Contains(sub, "@") {
			return &domain.Identity{Email: sub}
		}
	}
	return &domain.Identity{Email: placeholderEmail}
}
