package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/dmitrijs2005/mithaimart/internal/cryptox"
	"github.com/dmitrijs2005/mithaimart/internal/logging"
	"github.com/dmitrijs2005/mithaimart/internal/server/auth"
	"github.com/dmitrijs2005/mithaimart/internal/server/config"
	"github.com/dmitrijs2005/mithaimart/internal/server/metrics"
	"github.com/dmitrijs2005/mithaimart/internal/server/models"
	"github.com/dmitrijs2005/mithaimart/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mithaimart/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// ---- helpers ----

func newTestServer(t *testing.T) (*HTTPServer, *services.AccountService) {
	t.Helper()
	cfg := &config.Config{SecretKey: testSecret, AccessTokenValidityDuration: time.Hour}
	svc := services.NewAccountService(nil, repomanager.NewMemoryRepositoryManager(), cfg,
		services.WithHashParams(cryptox.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}))
	m := metrics.New(prometheus.NewRegistry())
	return NewHTTPServer(":0", logging.Discard(), svc, m, testSecret), svc
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var e Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	return e
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var s SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	return s
}

// ---- register / login ----

func TestRegisterThenLogin(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Anil", "email": "anil@x.io", "password": "jalebi1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decodeSession(t, rec)
	assert.Equal(t, "Anil", reg.User.Name)
	assert.Equal(t, common.RoleUser, reg.User.Role)
	assert.NotEmpty(t, reg.Token)
	assert.False(t, reg.ExpiresAt.IsZero())

	rec = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "anil@x.io", "password": "jalebi1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeSession(t, rec)
	assert.Equal(t, reg.User, login.User)
}

func TestRegister_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "", "email": "a@b.co", "password": "123456",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, ErrCodeValidation, e.Code)
	assert.Equal(t, "Name is required", e.Message)

	body := map[string]string{"name": "A", "email": "a@b.co", "password": "123456"}
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/auth/register", "", body).Code)

	rec = do(t, h, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	e = decodeError(t, rec)
	assert.Equal(t, http.StatusConflict, e.Status)
	assert.Equal(t, common.ErrDuplicateAccount.Error(), e.Message)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ghost@x.io", "password": "123456",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, ErrCodeInvalidCredentials, e.Code)
	assert.Equal(t, "invalid email or password", e.Message)
}

func TestLogin_MalformedBody(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeBadRequest, decodeError(t, rec).Code)
}

// ---- protected routes ----

func TestMe(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	reg := decodeSession(t, do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Lata", "email": "lata@x.io", "password": "peda123",
	}))

	rec := do(t, h, http.MethodGet, "/api/auth/me", reg.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me meResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, reg.User, me.User)

	rec = do(t, h, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeUnauthorized, decodeError(t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/auth/me", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_ExpiredToken(t *testing.T) {
	s, _ := newTestServer(t)

	tok, _, err := auth.GenerateToken(&models.Account{ID: "x", Role: common.RoleUser}, []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	rec := do(t, s.Handler(), http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token expired", decodeError(t, rec).Message)
}

func TestMe_UnknownAccountIsUnauthorized(t *testing.T) {
	s, _ := newTestServer(t)

	tok, _, err := auth.GenerateToken(&models.Account{ID: "gone", Role: common.RoleUser}, []byte(testSecret), time.Hour)
	require.NoError(t, err)

	rec := do(t, s.Handler(), http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminSummary(t *testing.T) {
	s, svc := newTestServer(t)
	h := s.Handler()
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, "admin@x.io", "rasmalai"))
	admin, err := svc.Login(ctx, "admin@x.io", "rasmalai")
	require.NoError(t, err)
	user, err := svc.Register(ctx, "Cust", "cust@x.io", "soanpapdi")
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/admin/summary", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum adminSummaryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sum))
	assert.Equal(t, common.RoleAdmin, sum.Admin.Role)

	rec = do(t, h, http.MethodGet, "/api/admin/summary", user.Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ErrCodeForbidden, decodeError(t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/admin/summary", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- error mapping ----

type fakeAccounts struct {
	err error
}

func (f fakeAccounts) Register(context.Context, string, string, string) (*services.AuthResult, error) {
	return nil, f.err
}
func (f fakeAccounts) Login(context.Context, string, string) (*services.AuthResult, error) {
	return nil, f.err
}
func (f fakeAccounts) Me(context.Context, string) (*models.AccountView, error) { return nil, f.err }

func TestWriteServiceError_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{common.ErrTooManyAttempts, http.StatusTooManyRequests, ErrCodeTooManyAttempts},
		{common.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{common.ErrDuplicateAccount, http.StatusConflict, ErrCodeConflict},
		{common.ErrInternal, http.StatusInternalServerError, ErrCodeInternal},
		{errors.New("db password leaked in message"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			s := NewHTTPServer(":0", logging.Discard(), fakeAccounts{err: tt.err}, nil, testSecret)

			rec := do(t, s.Handler(), http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.co", "password": "123456"})
			require.Equal(t, tt.status, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, tt.code, e.Code)
			assert.NotContains(t, e.Message, "leaked")
		})
	}
}

// ---- ambient routes ----

func TestHealthMetricsAndNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))

	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mithaimart_http_requests_total")

	rec = do(t, h, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, decodeError(t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/auth/login", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
