// Package guard decides whether the current session may enter a restricted
// view. Evaluation is a pure function of the session snapshot: it performs
// no I/O and returns the same decision for the same state.
package guard

import (
	"github.com/dmitrijs2005/mithaimart/internal/client/models"
	"github.com/dmitrijs2005/mithaimart/internal/client/session"
)

// LandingRoute is where refused navigations are sent.
const LandingRoute = "/"

// Outcome of a guard evaluation.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Decision is the guard verdict. Target is empty when Outcome is Allow.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Allowed reports whether navigation may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Policy gates a view on the signed-in user. A nil predicate admits any
// authenticated user.
type Policy struct {
	name  string
	admit func(*models.User) bool
}

func NewPolicy(name string, admit func(*models.User) bool) Policy {
	return Policy{name: name, admit: admit}
}

// Authenticated admits any signed-in user.
func Authenticated() Policy {
	return NewPolicy("authenticated", nil)
}

// Admin admits only users the server reported as admins.
func Admin() Policy {
	return NewPolicy("admin", (*models.User).IsAdmin)
}

func (p Policy) Name() string { return p.name }

func (p Policy) Evaluate(s session.State) Decision {
	if !s.IsAuthenticated() {
		return Decision{Outcome: RedirectLogin, Target: LandingRoute}
	}
	if p.admit != nil && !p.admit(s.User) {
		return Decision{Outcome: RedirectUnauthorized, Target: LandingRoute}
	}
	return Decision{Outcome: Allow}
}
