// Package session holds the client-side identity: the bearer token and the
// cached user profile.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
)

const (
	TokenKey   = "auth_token"
	ProfileKey = "user_profile"
)

// Store is the on-device key-value storage. data.Repository implements it.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Backend is the part of the API client the session needs.
type Backend interface {
	SetToken(token string)
	Me(ctx context.Context) (*data.User, error)
}

type Manager struct {
	store   Store
	backend Backend
	logger  *slog.Logger

	mu       sync.RWMutex
	token    string
	user     *data.User
	offline  bool
	watchers []chan struct{}
}

func NewManager(store Store, backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, backend: backend, logger: logger}
}

// Restore loads the cached session for an immediate render, then revalidates
// it with the server. Only a 401/403 clears it; a network failure keeps the
// cached copy and marks the session offline.
func (m *Manager) Restore(ctx context.Context) error {
	token, ok, err := m.store.Get(TokenKey)
	if err != nil {
		return fmt.Errorf("failed to read cached token: %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	var cached *data.User
	if raw, ok, err := m.store.Get(ProfileKey); err == nil && ok {
		var u data.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			cached = &u
		} else {
			m.logger.Warn("discarding unreadable cached profile", slog.String("error", err.Error()))
		}
	}

	m.mu.Lock()
	m.token = token
	m.user = cached
	m.mu.Unlock()
	m.backend.SetToken(token)
	m.notify()

	return m.revalidate(ctx)
}

func (m *Manager) revalidate(ctx context.Context) error {
	user, err := m.backend.Me(ctx)
	switch {
	case err == nil:
		m.mu.Lock()
		m.user = user
		m.offline = false
		m.mu.Unlock()
		if err := m.saveProfile(user); err != nil {
			m.logger.Warn("failed to cache profile", slog.String("error", err.Error()))
		}
		m.notify()
		return nil
	case api.IsUnauthorized(err):
		m.logger.Info("cached session rejected by server, logging out")
		if lerr := m.Logout(); lerr != nil {
			return lerr
		}
		return err
	default:
		m.logger.Warn("session revalidation failed, continuing offline", slog.String("error", err.Error()))
		m.mu.Lock()
		m.offline = true
		m.mu.Unlock()
		m.notify()
		return nil
	}
}

// Login persists the token and fetches a fresh profile.
func (m *Manager) Login(ctx context.Context, token string) (*data.User, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	if err := m.store.Set(TokenKey, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.user = nil
	m.offline = false
	m.mu.Unlock()
	m.backend.SetToken(token)

	user, err := m.backend.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			if lerr := m.Logout(); lerr != nil {
				m.logger.Error("forced logout failed", slog.String("error", lerr.Error()))
			}
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	if err := m.saveProfile(user); err != nil {
		return user, fmt.Errorf("failed to cache profile: %w", err)
	}
	m.notify()
	return user, nil
}

// Logout clears token and profile from storage and memory.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.offline = false
	m.mu.Unlock()
	m.backend.SetToken("")
	m.notify()

	if err := m.store.Delete(TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	if err := m.store.Delete(ProfileKey); err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	return nil
}

// HandleError forces a logout when err is a 401/403 and reports whether it did.
func (m *Manager) HandleError(err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	if !m.LoggedIn() {
		return false
	}
	if lerr := m.Logout(); lerr != nil {
		m.logger.Error("forced logout failed", slog.String("error", lerr.Error()))
	}
	return true
}

func (m *Manager) saveProfile(user *data.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return m.store.Set(ProfileKey, string(raw))
}

func (m *Manager) Current() (string, *data.User) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.user
}

func (m *Manager) User() *data.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

func (m *Manager) LoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

func (m *Manager) Offline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offline
}

func (m *Manager) IsAdmin() bool {
	u := m.User()
	return u != nil && u.Role == data.RoleAdmin
}

func (m *Manager) CanContribute() bool {
	u := m.User()
	return u != nil && (u.Role == data.RoleAdmin || u.Role == data.RoleContributor)
}

// Subscribe returns a channel that receives a value whenever the session
// changes. Notifications are coalesced.
func (m *Manager) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.watchers = append(m.watchers, ch)
	m.mu.Unlock()
	return ch
}

func (m *Manager) notify() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
