// Package auth owns the authentication session: token lifecycle, persistence
// and the reauthenticating request wrapper.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soniq/soniq/internal/api"
)

var ErrNotAuthenticated = errors.New("auth: not authenticated")

// Manager owns the auth session and is the sole writer of the Store. The
// session is authenticated iff both tokens are present.
type Manager struct {
	client *api.Client
	store  *Store // nil disables persistence
	logger *slog.Logger

	user    *api.User
	access  string
	refresh string
}

func NewManager(client *api.Client, store *Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{client: client, store: store, logger: logger}
}

// IsAuthenticated reports whether both tokens are present. A session holding
// only one token counts as unauthenticated.
func (m *Manager) IsAuthenticated() bool {
	return m.access != "" && m.refresh != ""
}

func (m *Manager) AccessToken() string  { return m.access }
func (m *Manager) RefreshToken() string { return m.refresh }

// User returns the account record, if known.
func (m *Manager) User() (api.User, bool) {
	if m.user == nil {
		return api.User{}, false
	}
	return *m.user, true
}

// SignUp registers an account. On success the user is kept and persisted;
// tokens are not issued by this endpoint.
func (m *Manager) SignUp(ctx context.Context, email, password, username string) (api.User, error) {
	resp, err := m.client.SignUp(ctx, api.SignUpRequest{Email: email, Password: password, Username: username})
	if err != nil {
		return api.User{}, err
	}
	m.setUser(ctx, resp.Result)
	return resp.Result, nil
}

// Login validates credentials and records the user. Token issue is a separate
// call (IssueTokens), matching the service's split endpoints.
func (m *Manager) Login(ctx context.Context, email, password string) (api.User, error) {
	user, err := m.client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return api.User{}, err
	}
	m.setUser(ctx, user)
	return user, nil
}

// IssueTokens exchanges credentials for a token pair and persists it.
func (m *Manager) IssueTokens(ctx context.Context, email, password string) error {
	pair, err := m.client.IssueTokens(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	m.access = pair.Access
	m.refresh = pair.Refresh
	m.persistTokens(ctx)
	m.logger.Debug("tokens issued")
	return nil
}

// Refresh exchanges the refresh token for a new access token. The refresh
// token is retained. A failure that indicates the refresh token itself is
// invalid or expired is terminal: the whole session and the persisted store
// are cleared, forcing a re-login. Other failures leave the session intact so
// the caller can retry later.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.refresh == "" {
		return ErrNotAuthenticated
	}
	access, err := m.client.RefreshToken(ctx, m.refresh)
	if err != nil {
		if api.IsTokenExpired(err) {
			m.logger.Info("refresh token rejected, clearing session")
			m.Logout(ctx)
		}
		return err
	}
	m.access = access
	m.persistTokens(ctx)
	m.logger.Debug("access token refreshed")
	return nil
}

// Restore hydrates the session from the store without any network calls.
// Only a complete token pair authenticates.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	stored, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if stored.Access == "" || stored.Refresh == "" {
		return nil
	}
	m.access = stored.Access
	m.refresh = stored.Refresh
	m.user = stored.User
	m.logger.Debug("session restored")
	return nil
}

// Logout clears the session and the persisted store unconditionally.
func (m *Manager) Logout(ctx context.Context) {
	m.user = nil
	m.access = ""
	m.refresh = ""
	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn("clear session store", slog.Any("err", err))
		}
	}
}

func (m *Manager) setUser(ctx context.Context, u api.User) {
	m.user = &u
	if m.store != nil {
		if err := m.store.SaveUser(ctx, u); err != nil {
			m.logger.Warn("persist user", slog.Any("err", err))
		}
	}
}

func (m *Manager) persistTokens(ctx context.Context) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveTokens(ctx, m.access, m.refresh); err != nil {
		m.logger.Warn("persist tokens", slog.Any("err", err))
	}
}
