// Package form implements the credential entry form shared by login and
// registration: field validation, a single in-flight submission, and the
// post-login notification and redirect.
package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/client/models"
	"github.com/dmitrijs2005/mithaimart/internal/client/ui"
	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/dmitrijs2005/mithaimart/internal/credentials"
	"github.com/dmitrijs2005/mithaimart/internal/logging"
)

// FieldSubmit is the error slot for server and transport failures.
const FieldSubmit = "submit"

const (
	MsgLoginSuccess    = "Login successful!"
	MsgRegisterSuccess = "Account created!"
)

// DefaultSubmitTimeout bounds one submission when no timeout is configured.
const DefaultSubmitTimeout = 15 * time.Second

var (
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrUnknownField     = errors.New("unknown form field")
)

type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

type Status int

const (
	StatusIdle Status = iota
	StatusValidating
	StatusSubmitting
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusValidating:
		return "validating"
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Draft holds what the user typed.
type Draft struct {
	Name     string
	Email    string
	Password string
}

// Authenticator signs the user in or up. session.Manager implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
}

// Navigator moves to a route after a successful submission.
type Navigator interface {
	Navigate(path string) (ui.Route, error)
}

type Form struct {
	auth     Authenticator
	notifier ui.Notifier
	nav      Navigator
	logger   logging.Logger
	timeout  time.Duration

	mu     sync.Mutex
	mode   Mode
	draft  Draft
	errs   map[string]string
	status Status
}

type Option func(*Form)

// WithSubmitTimeout bounds each submission. Non-positive values keep the
// default.
func WithSubmitTimeout(d time.Duration) Option {
	return func(f *Form) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(f *Form) { f.logger = l }
}

func New(auth Authenticator, notifier ui.Notifier, nav Navigator, opts ...Option) *Form {
	f := &Form{
		auth:     auth,
		notifier: notifier,
		nav:      nav,
		logger:   logging.Discard(),
		timeout:  DefaultSubmitTimeout,
		errs:     map[string]string{},
	}
	for _, o := range opts {
		o(f)
	}
	f.logger = f.logger.With("module", "form")
	return f
}

// Set edits one field. Its error and the submit error are cleared and the
// form returns to Idle. Fields are locked while a submission is in flight.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == StatusSubmitting {
		return ErrSubmitInProgress
	}

	switch field {
	case credentials.FieldName:
		f.draft.Name = value
	case credentials.FieldEmail:
		f.draft.Email = value
	case credentials.FieldPassword:
		f.draft.Password = value
	default:
		return ErrUnknownField
	}

	delete(f.errs, field)
	delete(f.errs, FieldSubmit)
	f.status = StatusIdle
	return nil
}

// ToggleMode flips between login and register and clears every field and
// error. It is refused while a submission is in flight.
func (f *Form) ToggleMode() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == StatusSubmitting {
		return ErrSubmitInProgress
	}

	if f.mode == ModeLogin {
		f.mode = ModeRegister
	} else {
		f.mode = ModeLogin
	}
	f.resetLocked()
	return nil
}

// Close resets the draft, the errors and the mode. It is refused while a
// submission is in flight.
func (f *Form) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == StatusSubmitting {
		return ErrSubmitInProgress
	}

	f.mode = ModeLogin
	f.resetLocked()
	return nil
}

func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Errors returns a copy of the field and submit errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Submitting reports whether the submit control is disabled.
func (f *Form) Submitting() bool {
	return f.Status() == StatusSubmitting
}

// Submit validates the draft and, if it is clean, sends it. Field errors
// never reach the network and are returned as *credentials.ValidationError.
// A server or transport failure is returned and its message shown in the
// submit slot. On success the form closes, a notification is shown and the
// user is taken to the admin or purchase view depending on role.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.status == StatusSubmitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}

	f.status = StatusValidating
	mode := f.mode
	draft := f.draft

	fieldErrs := credentials.Validate(draft.Name, draft.Email, draft.Password, mode == ModeRegister)
	f.errs = map[string]string(fieldErrs)
	if err := fieldErrs.Err(); err != nil {
		f.status = StatusIdle
		f.mu.Unlock()
		return err
	}

	f.status = StatusSubmitting
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var (
		user *models.User
		err  error
	)
	if mode == ModeRegister {
		user, err = f.auth.Register(ctx, draft.Name, draft.Email, draft.Password)
	} else {
		user, err = f.auth.Login(ctx, draft.Email, draft.Password)
	}

	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			msg = common.ErrNetwork.Error()
		}

		f.mu.Lock()
		f.errs[FieldSubmit] = msg
		f.status = StatusFailed
		f.mu.Unlock()

		f.logger.Info(ctx, "submission failed", "mode", mode.String(), "error", err)
		return err
	}

	f.mu.Lock()
	f.mode = ModeLogin
	f.resetLocked()
	f.status = StatusSuccess
	f.mu.Unlock()

	msg := MsgLoginSuccess
	if mode == ModeRegister {
		msg = MsgRegisterSuccess
	}
	f.notifier.ShowNotification(msg, ui.KindSuccess)

	target := ui.RoutePurchase
	if user.IsAdmin() {
		target = ui.RouteAdmin
	}
	if _, err := f.nav.Navigate(target); err != nil {
		f.logger.Warn(ctx, "post-login navigation failed", "target", target, "error", err)
	}

	return nil
}

func (f *Form) resetLocked() {
	f.draft = Draft{}
	f.errs = map[string]string{}
	f.status = StatusIdle
}
