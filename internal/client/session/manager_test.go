package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/client/models"
	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/dmitrijs2005/mithaimart/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	mu       sync.Mutex
	sessions map[string]*models.Session // by email
	err      error
	calls    int

	// when set, Login blocks until release is closed
	release chan struct{}
	entered chan struct{}
}

func (f *fakeIssuer) Login(ctx context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	f.calls++
	rel, ent := f.release, f.entered
	f.mu.Unlock()

	if rel != nil {
		close(ent)
		<-rel
	}

	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[email]
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	cp := *s
	return &cp, nil
}

func (f *fakeIssuer) Register(ctx context.Context, name, email, password string) (*models.Session, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.sessions[email]; ok {
		return nil, common.ErrDuplicateAccount
	}
	return &models.Session{
		User:      models.User{ID: "new", Name: name, Email: email, Role: common.RoleUser},
		Token:     "tok-new",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type memStore struct {
	mu      sync.Mutex
	sess    *models.Session
	loadErr error
	saveErr error
	cleared int
}

func (s *memStore) Load(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.sess == nil {
		return nil, common.ErrNotFound
	}
	cp := *s.sess
	return &cp, nil
}

func (s *memStore) Save(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *sess
	s.sess = &cp
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	s.sess = nil
	return nil
}

func (s *memStore) stored() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func adminSession() *models.Session {
	return &models.Session{
		User:      models.User{ID: "a1", Name: "Admin", Email: "a@b.com", Role: common.RoleAdmin},
		Token:     "tok-admin",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newTestManager(issuer Issuer, store Store) *Manager {
	return NewManager(issuer, store, logging.Discard())
}

func TestManager_LoginStoresAndPersists(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	store := &memStore{}
	m := newTestManager(issuer, store)

	require.False(t, m.IsAuthenticated())

	u, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, common.RoleAdmin, u.Role)

	assert.True(t, m.IsAuthenticated())
	st := m.State()
	assert.Equal(t, common.RoleAdmin, st.User.Role)
	assert.Equal(t, "tok-admin", st.Token)

	require.NotNil(t, store.stored())
	assert.Equal(t, "tok-admin", store.stored().Token)
}

func TestManager_LoginFailureLeavesStateUntouched(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{}}
	store := &memStore{}
	m := newTestManager(issuer, store)

	_, err := m.Login(context.Background(), "nobody@b.com", "secret1")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, State{}, m.State())
	assert.Nil(t, store.stored())
}

func TestManager_RegisterDuplicateKeepsState(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	m := newTestManager(issuer, &memStore{})

	_, err := m.Register(context.Background(), "Asha", "a@b.com", "secret1")
	require.ErrorIs(t, err, common.ErrDuplicateAccount)
	assert.Equal(t, State{}, m.State())

	u, err := m.Register(context.Background(), "Asha", "new@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, common.RoleUser, u.Role)
	assert.True(t, m.IsAuthenticated())
}

func TestManager_LogoutIsIdempotent(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	store := &memStore{}
	m := newTestManager(issuer, store)

	_, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, store.stored())

	require.NoError(t, m.Logout(context.Background()))
	assert.False(t, m.IsAuthenticated())
}

func TestManager_PersistFailureStillSignsIn(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	m := newTestManager(issuer, &memStore{saveErr: errors.New("disk full")})

	_, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.True(t, m.IsAuthenticated())
}

func TestManager_Restore(t *testing.T) {
	expired := adminSession()
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	tests := []struct {
		name        string
		store       *memStore
		wantAuth    bool
		wantCleared bool
	}{
		{name: "absent", store: &memStore{}},
		{name: "malformed", store: &memStore{loadErr: ErrMalformed}, wantCleared: true},
		{name: "expired", store: &memStore{sess: expired}, wantCleared: true},
		{name: "valid", store: &memStore{sess: adminSession()}, wantAuth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(&fakeIssuer{}, tt.store)
			m.Restore(context.Background())

			assert.Equal(t, tt.wantAuth, m.IsAuthenticated())
			assert.Equal(t, tt.wantCleared, tt.store.cleared > 0)
			if !tt.wantAuth {
				assert.Equal(t, State{}, m.State())
			}
		})
	}
}

func TestManager_StateReportsExpiredAsSignedOut(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	m := newTestManager(issuer, &memStore{})

	_, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.False(t, m.IsAuthenticated())
}

func TestManager_StateReturnsCopy(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	m := newTestManager(issuer, &memStore{})

	_, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	st := m.State()
	st.User.Role = common.RoleUser

	assert.Equal(t, common.RoleAdmin, m.State().User.Role)
}

func TestManager_LoginCompletingAfterLogoutIsDiscarded(t *testing.T) {
	issuer := &fakeIssuer{
		sessions: map[string]*models.Session{"a@b.com": adminSession()},
		release:  make(chan struct{}),
		entered:  make(chan struct{}),
	}
	store := &memStore{}
	m := newTestManager(issuer, store)

	errCh := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "a@b.com", "secret1")
		errCh <- err
	}()

	<-issuer.entered
	require.NoError(t, m.Logout(context.Background()))
	close(issuer.release)

	err := <-errCh
	require.ErrorIs(t, err, common.ErrSessionSuperseded)
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, store.stored())
}

func TestManager_AuthorizedUnauthorizedSignsOut(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	store := &memStore{}
	m := newTestManager(issuer, store)

	_, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	var gotToken string
	err = m.Authorized(context.Background(), func(ctx context.Context, token string) error {
		gotToken = token
		return common.ErrUnauthorized
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, "tok-admin", gotToken)
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, store.stored())
}

func TestManager_AuthorizedOtherErrorKeepsSession(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	m := newTestManager(issuer, &memStore{})

	_, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	err = m.Authorized(context.Background(), func(ctx context.Context, token string) error {
		return common.ErrForbidden
	})
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.True(t, m.IsAuthenticated())
}

func TestManager_AuthorizedWithoutSessionSkipsCall(t *testing.T) {
	m := newTestManager(&fakeIssuer{}, &memStore{})

	called := false
	err := m.Authorized(context.Background(), func(ctx context.Context, token string) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.False(t, called)
}

func TestManager_Subscribe(t *testing.T) {
	issuer := &fakeIssuer{sessions: map[string]*models.Session{"a@b.com": adminSession()}}
	m := newTestManager(issuer, &memStore{})

	var seen []bool
	unsubscribe := m.Subscribe(func(s State) {
		seen = append(seen, s.IsAuthenticated())
	})

	_, err := m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, m.Logout(context.Background()))
	// already signed out, no event
	require.NoError(t, m.Logout(context.Background()))

	unsubscribe()
	_, err = m.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, seen)
}

func TestManager_LoginRejectsIncompleteSession(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Session)
	}{
		{"empty token", func(s *models.Session) { s.Token = "" }},
		{"missing user id", func(s *models.Session) { s.User.ID = "" }},
		{"unknown role", func(s *models.Session) { s.User.Role = "root" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := adminSession()
			tt.mutate(bad)
			store := &memStore{}
			m := newTestManager(&fakeIssuer{sessions: map[string]*models.Session{"a@b.com": bad}}, store)

			u, err := m.Login(context.Background(), "a@b.com", "secret1")
			require.ErrorIs(t, err, common.ErrInternal)
			assert.Nil(t, u)
			assert.Equal(t, State{}, m.State())
			assert.False(t, m.IsAuthenticated())
			assert.Nil(t, store.stored())
		})
	}
}
