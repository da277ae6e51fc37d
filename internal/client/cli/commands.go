package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/client/ui"
	"github.com/dmitrijs2005/mithaimart/internal/common"
)

// WhoAmI asks the server which account the current token belongs to. A
// rejected token ends the session.
func (a *App) WhoAmI(ctx context.Context) error {
	err := a.session.Authorized(ctx, func(ctx context.Context, token string) error {
		u, err := a.api.Me(ctx, token)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s <%s> role=%s id=%s\n", u.Name, u.Email, u.Role, u.ID)
		return nil
	})
	return a.reportAuthorized(err)
}

// AdminSummary fetches the admin-only summary. The server enforces the
// role as well; the client check only avoids a pointless request.
func (a *App) AdminSummary(ctx context.Context) error {
	if !a.session.State().User.IsAdmin() {
		fmt.Fprintln(a.out, "Admins only")
		return common.ErrForbidden
	}

	err := a.session.Authorized(ctx, func(ctx context.Context, token string) error {
		s, err := a.api.AdminSummary(ctx, token)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Admin: %s <%s>, server time %s\n", s.Admin.Name, s.Admin.Email, s.ServerTime.Format(time.RFC3339))
		return nil
	})
	return a.reportAuthorized(err)
}

// Open navigates to path. Guarded views the user may not see silently land
// on the landing page.
func (a *App) Open(ctx context.Context, path string) error {
	if _, err := a.nav.Navigate(path); err != nil {
		if errors.Is(err, ui.ErrUnknownRoute) {
			fmt.Fprintf(a.out, "No such page: %s\n", path)
		}
		return err
	}
	return nil
}

// Menu prints the navbar for the current user.
func (a *App) Menu(ctx context.Context) error {
	return ui.NavbarFor(a.session.State().User).Render(a.out)
}

func (a *App) reportAuthorized(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrUnauthorized) && !a.session.IsAuthenticated():
		fmt.Fprintln(a.out, "Your session has ended, please log in again")
	case errors.Is(err, common.ErrForbidden):
		fmt.Fprintln(a.out, "Admins only")
	default:
		fmt.Fprintf(a.out, "Request failed: %v\n", err)
	}
	return err
}
