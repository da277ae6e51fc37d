// Package services contains server-side business logic. AccountService
// registers and authenticates storefront accounts and issues session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/dmitrijs2005/mithaimart/internal/credentials"
	"github.com/dmitrijs2005/mithaimart/internal/cryptox"
	"github.com/dmitrijs2005/mithaimart/internal/logging"
	"github.com/dmitrijs2005/mithaimart/internal/server/auth"
	"github.com/dmitrijs2005/mithaimart/internal/server/config"
	"github.com/dmitrijs2005/mithaimart/internal/server/limiter"
	"github.com/dmitrijs2005/mithaimart/internal/server/metrics"
	"github.com/dmitrijs2005/mithaimart/internal/server/models"
	"github.com/dmitrijs2005/mithaimart/internal/server/repositories/repomanager"
)

// AuthResult is what a successful login or registration hands back.
type AuthResult struct {
	Account   models.AccountView
	Token     string
	ExpiresAt time.Time
}

// LoginLimiter throttles failed logins per normalized email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// Recorder receives one observation per auth attempt.
type Recorder interface {
	ObserveAuth(operation, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveAuth(string, string) {}

type Option func(*AccountService)

func WithLimiter(l LoginLimiter) Option { return func(s *AccountService) { s.limiter = l } }

func WithRecorder(r Recorder) Option { return func(s *AccountService) { s.recorder = r } }

func WithLogger(l logging.Logger) Option { return func(s *AccountService) { s.logger = l } }

// WithHashParams overrides the Argon2id cost. Tests use cheap parameters.
func WithHashParams(p cryptox.Params) Option { return func(s *AccountService) { s.hashParams = p } }

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	tokenTTL    time.Duration
	hashParams  cryptox.Params
	limiter     LoginLimiter
	recorder    Recorder
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService constructs an AccountService using repositories and server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *AccountService {
	s := &AccountService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
		tokenTTL:    cfg.AccessTokenValidityDuration,
		hashParams:  cryptox.DefaultParams,
		limiter:     limiter.Noop{},
		recorder:    noopRecorder{},
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "accounts")
	return s
}

// Register creates a user-role account and signs the caller in.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if err := credentials.Validate(name, email, password, true).Err(); err != nil {
		s.recorder.ObserveAuth(metrics.OpRegister, metrics.OutcomeInvalidInput)
		return nil, err
	}

	account, err := s.create(ctx, strings.TrimSpace(name), credentials.NormalizeEmail(email), password, common.RoleUser)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateAccount) {
			s.recorder.ObserveAuth(metrics.OpRegister, metrics.OutcomeDuplicate)
			return nil, err
		}
		s.recorder.ObserveAuth(metrics.OpRegister, metrics.OutcomeError)
		s.logger.Error(ctx, "register failed", "error", err)
		return nil, common.ErrInternal
	}

	res, err := s.issue(account)
	if err != nil {
		s.recorder.ObserveAuth(metrics.OpRegister, metrics.OutcomeError)
		s.logger.Error(ctx, "token issue failed", "account_id", account.ID, "error", err)
		return nil, common.ErrInternal
	}

	s.recorder.ObserveAuth(metrics.OpRegister, metrics.OutcomeSuccess)
	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return res, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error, and an unknown email still pays for one hash verification.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := credentials.Validate("", email, password, false).Err(); err != nil {
		s.recorder.ObserveAuth(metrics.OpLogin, metrics.OutcomeInvalidInput)
		return nil, err
	}
	email = credentials.NormalizeEmail(email)

	if err := s.limiter.Allow(ctx, email); err != nil {
		if errors.Is(err, common.ErrTooManyAttempts) {
			s.recorder.ObserveAuth(metrics.OpLogin, metrics.OutcomeThrottled)
			return nil, err
		}
		s.logger.Warn(ctx, "login limiter unavailable", "error", err)
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.recorder.ObserveAuth(metrics.OpLogin, metrics.OutcomeError)
			s.logger.Error(ctx, "account lookup failed", "error", err)
			return nil, common.ErrInternal
		}
		_, _ = cryptox.VerifyPassword(password, s.dummy())
		return nil, s.loginFailed(ctx, email)
	}

	ok, err := cryptox.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		s.recorder.ObserveAuth(metrics.OpLogin, metrics.OutcomeError)
		s.logger.Error(ctx, "stored hash unreadable", "account_id", account.ID, "error", err)
		return nil, common.ErrInternal
	}
	if !ok {
		return nil, s.loginFailed(ctx, email)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn(ctx, "login limiter reset failed", "error", err)
	}

	res, err := s.issue(account)
	if err != nil {
		s.recorder.ObserveAuth(metrics.OpLogin, metrics.OutcomeError)
		s.logger.Error(ctx, "token issue failed", "account_id", account.ID, "error", err)
		return nil, common.ErrInternal
	}

	s.recorder.ObserveAuth(metrics.OpLogin, metrics.OutcomeSuccess)
	s.logger.Info(ctx, "login succeeded", "account_id", account.ID, "role", account.Role)
	return res, nil
}

// Me returns the account behind a validated token subject. A token whose
// account no longer exists is treated as unauthorized.
func (s *AccountService) Me(ctx context.Context, accountID string) (*models.AccountView, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		s.logger.Error(ctx, "account lookup failed", "account_id", accountID, "error", err)
		return nil, common.ErrInternal
	}
	v := account.View()
	return &v, nil
}

// SeedAdmin creates an admin account unless the email is already taken.
func (s *AccountService) SeedAdmin(ctx context.Context, email, password string) error {
	if err := credentials.Validate("Admin", email, password, true).Err(); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}

	account, err := s.create(ctx, "Admin", credentials.NormalizeEmail(email), password, common.RoleAdmin)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateAccount) {
			s.logger.Info(ctx, "admin account already present")
			return nil
		}
		return fmt.Errorf("seeding admin: %w", err)
	}

	s.logger.Info(ctx, "admin account seeded", "account_id", account.ID)
	return nil
}

// --- helpers below ---

func (s *AccountService) create(ctx context.Context, name, email, password string, role common.Role) (*models.Account, error) {
	hash, err := cryptox.HashPassword(password, s.hashParams)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Accounts(s.db).Create(ctx, &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
}

func (s *AccountService) issue(account *models.Account) (*AuthResult, error) {
	token, expiresAt, err := auth.GenerateToken(account, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account.View(), Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AccountService) loginFailed(ctx context.Context, email string) error {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.logger.Warn(ctx, "login limiter unavailable", "error", err)
	}
	s.recorder.ObserveAuth(metrics.OpLogin, metrics.OutcomeInvalidCredentials)
	return common.ErrInvalidCredentials
}

// dummy returns a throwaway hash with the service's cost parameters.
func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword("mithaimart-dummy-password", s.hashParams)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
