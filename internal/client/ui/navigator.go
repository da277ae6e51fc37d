package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mithaimart/internal/client/session"
	"github.com/dmitrijs2005/mithaimart/internal/logging"
)

var ErrUnknownRoute = errors.New("unknown route")

// SessionSource is the read side of the session manager.
type SessionSource interface {
	State() session.State
	Subscribe(fn func(session.State)) func()
}

// Navigator tracks the current view and runs the route's guard before
// every change. Refused navigations land on the guard's target without
// an error; the refusal is silent to the user.
type Navigator struct {
	sess   SessionSource
	logger logging.Logger
	routes map[string]Route

	mu       sync.Mutex
	current  string
	onChange func(Route)

	unsubscribe func()
}

func NewNavigator(sess SessionSource, routes []Route, logger logging.Logger) *Navigator {
	n := &Navigator{
		sess:    sess,
		logger:  logger.With("module", "navigator"),
		routes:  make(map[string]Route, len(routes)),
		current: RouteLanding,
	}
	for _, r := range routes {
		n.routes[r.Path] = r
	}
	n.unsubscribe = sess.Subscribe(n.sessionChanged)
	return n
}

// OnChange sets the callback invoked with the route actually shown after
// each navigation, including redirects caused by a session change.
func (n *Navigator) OnChange(fn func(Route)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Navigate moves to path, or to the guard's redirect target when the
// current session may not see it. It returns the route that is shown.
func (n *Navigator) Navigate(path string) (Route, error) {
	target, ok := n.routes[path]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}

	shown := n.resolve(target, n.sess.State())

	n.mu.Lock()
	n.current = shown.Path
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(shown)
	}
	return shown, nil
}

// Current returns the route being shown.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.routes[n.current]
}

// Routes returns the route table in no particular order.
func (n *Navigator) Routes() []Route {
	out := make([]Route, 0, len(n.routes))
	for _, r := range n.routes {
		out = append(out, r)
	}
	return out
}

// Close stops following session changes.
func (n *Navigator) Close() {
	if n.unsubscribe != nil {
		n.unsubscribe()
	}
}

func (n *Navigator) resolve(r Route, s session.State) Route {
	for r.Policy != nil {
		d := r.Policy.Evaluate(s)
		if d.Allowed() {
			break
		}
		n.logger.Debug(context.Background(), "navigation refused",
			"path", r.Path, "policy", r.Policy.Name(), "outcome", d.Outcome.String())

		next, ok := n.routes[d.Target]
		if !ok || next.Path == r.Path {
			next = n.routes[RouteLanding]
			next.Policy = nil
		}
		r = next
	}
	return r
}

// sessionChanged re-checks the current view, so signing out while on a
// guarded view moves the user off it.
func (n *Navigator) sessionChanged(s session.State) {
	n.mu.Lock()
	cur := n.routes[n.current]
	n.mu.Unlock()

	shown := n.resolve(cur, s)
	if shown.Path == cur.Path {
		return
	}

	n.mu.Lock()
	n.current = shown.Path
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(shown)
	}
}
