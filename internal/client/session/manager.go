// Package session holds the storefront's signed-in state: who the user is
// and which bearer token represents them. The Manager is the only writer;
// guards, the navigator and the CLI read snapshots from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/client/models"
	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/dmitrijs2005/mithaimart/internal/logging"
)

// State is a snapshot of the session. User is nil exactly when Token is
// empty.
type State struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// IsAuthenticated reports whether the snapshot carries a signed-in user.
func (s State) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// Issuer is the part of the server API that mints sessions.
type Issuer interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Register(ctx context.Context, name, email, password string) (*models.Session, error)
}

// Manager owns the session state.
//
// Writes are serialised by writeMu. Every logout bumps epoch; a login or
// registration that started in an older epoch is discarded when it
// completes and reports common.ErrSessionSuperseded.
type Manager struct {
	issuer Issuer
	store  Store
	logger logging.Logger
	now    func() time.Time

	writeMu sync.Mutex

	mu    sync.RWMutex
	state State
	epoch uint64

	listenersMu sync.Mutex
	listeners   map[int]func(State)
	nextID      int
}

func NewManager(issuer Issuer, store Store, logger logging.Logger) *Manager {
	return &Manager{
		issuer:    issuer,
		store:     store,
		logger:    logger.With("module", "session"),
		now:       time.Now,
		listeners: make(map[int]func(State)),
	}
}

// Restore loads the persisted session. Missing, malformed or expired
// records leave the manager signed out; the bad record is erased. Storage
// failures are logged, never returned.
func (m *Manager) Restore(ctx context.Context) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	sess, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		m.set(State{})
		return
	case err != nil:
		m.logger.Warn(ctx, "discarding persisted session", "error", err)
		m.set(State{})
		m.clearStore(ctx)
		return
	case !sess.ExpiresAt.IsZero() && !m.now().Before(sess.ExpiresAt):
		m.logger.Info(ctx, "persisted session expired", "expired_at", sess.ExpiresAt)
		m.set(State{})
		m.clearStore(ctx)
		return
	}

	user := sess.User
	m.set(State{User: &user, Token: sess.Token, ExpiresAt: sess.ExpiresAt})
	m.logger.Info(ctx, "session restored", "user_id", user.ID, "role", user.Role)
}

// Login authenticates with the server. On success the session is stored
// and persisted; on failure the server's error is returned unchanged and
// the current state is untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	epoch := m.currentEpoch()

	sess, err := m.issuer.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return m.establish(ctx, epoch, sess)
}

// Register creates an account and signs it in, with the same contract as
// Login.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	epoch := m.currentEpoch()

	sess, err := m.issuer.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}

	return m.establish(ctx, epoch, sess)
}

// Logout clears the session and its persisted record. It is safe to call
// when already signed out. The in-memory state is cleared even if the
// store fails; that failure is returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	return m.logoutLocked(ctx)
}

// IsAuthenticated reports whether a user is signed in and the session has
// not passed its expiry.
func (m *Manager) IsAuthenticated() bool {
	return m.State().IsAuthenticated()
}

// State returns a copy of the current session. A session past its expiry
// is reported as signed out.
func (m *Manager) State() State {
	m.mu.RLock()
	s := m.state
	m.mu.RUnlock()

	if !s.ExpiresAt.IsZero() && !m.now().Before(s.ExpiresAt) {
		return State{}
	}
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Authorized runs a protected server call with the current token. When the
// server rejects the token the session is ended, provided it is still the
// one the call was made with.
func (m *Manager) Authorized(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	st := m.State()
	if !st.IsAuthenticated() {
		return common.ErrUnauthorized
	}

	err := fn(ctx, st.Token)
	if err != nil && errors.Is(err, common.ErrUnauthorized) {
		m.writeMu.Lock()
		m.mu.RLock()
		current := m.state.Token
		m.mu.RUnlock()
		if current == st.Token {
			m.logger.Info(ctx, "server rejected session, signing out")
			if lerr := m.logoutLocked(ctx); lerr != nil {
				m.logger.Warn(ctx, "clearing persisted session failed", "error", lerr)
			}
		}
		m.writeMu.Unlock()
	}
	return err
}

// Subscribe registers fn to be called with the new state after every
// change. The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.listenersMu.Lock()
		delete(m.listeners, id)
		m.listenersMu.Unlock()
	}
}

func (m *Manager) establish(ctx context.Context, epoch uint64, sess *models.Session) (*models.User, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if !usable(sess) {
		m.logger.Error(ctx, "server returned an unusable session")
		return nil, fmt.Errorf("%w: incomplete session in server response", common.ErrInternal)
	}

	if m.currentEpoch() != epoch {
		m.logger.Info(ctx, "discarding session completed after logout", "user_id", sess.User.ID)
		return nil, common.ErrSessionSuperseded
	}

	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Warn(ctx, "persisting session failed, it will not survive a restart", "error", err)
	}

	user := sess.User
	m.set(State{User: &user, Token: sess.Token, ExpiresAt: sess.ExpiresAt})
	m.logger.Info(ctx, "signed in", "user_id", user.ID, "role", user.Role)

	out := user
	return &out, nil
}

func (m *Manager) logoutLocked(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	wasSignedIn := m.state.IsAuthenticated()
	m.state = State{}
	m.mu.Unlock()

	err := m.store.Clear(ctx)

	if wasSignedIn {
		m.logger.Info(ctx, "signed out")
		m.notify(State{})
	}
	return err
}

func (m *Manager) set(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	m.notify(m.State())
}

func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn(ctx, "clearing persisted session failed", "error", err)
	}
}

func (m *Manager) currentEpoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

func (m *Manager) notify(s State) {
	m.listenersMu.Lock()
	fns := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenersMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
