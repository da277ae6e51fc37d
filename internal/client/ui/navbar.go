package ui

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/mithaimart/internal/client/models"
)

// NavItem is one entry of the navbar. Command is what the shell user types
// to activate it.
type NavItem struct {
	Label   string
	Command string
}

// Navbar is the header shown above every view. There is one variant per
// kind of visitor; NavbarFor picks it.
type Navbar interface {
	Variant() string
	Items() []NavItem
	Render(w io.Writer) error
}

// NavbarFor selects the navbar for the signed-in user, or the guest navbar
// when u is nil. The role comes from the server's user object.
func NavbarFor(u *models.User) Navbar {
	switch {
	case u == nil:
		return guestNavbar{}
	case u.IsAdmin():
		return adminNavbar{user: *u}
	default:
		return customerNavbar{user: *u}
	}
}

type guestNavbar struct{}

func (guestNavbar) Variant() string { return "guest" }

func (guestNavbar) Items() []NavItem {
	return []NavItem{{Label: "Login", Command: "login"}}
}

func (g guestNavbar) Render(w io.Writer) error {
	return renderBar(w, "MithaiMart", g.Items())
}

type customerNavbar struct {
	user models.User
}

func (customerNavbar) Variant() string { return "customer" }

func (customerNavbar) Items() []NavItem {
	return []NavItem{{Label: "Logout", Command: "logout"}}
}

func (c customerNavbar) Render(w io.Writer) error {
	return renderBar(w, "MithaiMart | "+c.user.Name, c.Items())
}

// adminNavbar groups its entries under a dropdown titled with the admin's
// name.
type adminNavbar struct {
	user models.User
}

func (adminNavbar) Variant() string { return "admin" }

func (adminNavbar) Items() []NavItem {
	return []NavItem{
		{Label: "Admin Dashboard", Command: "open " + RouteAdmin},
		{Label: "Logout", Command: "logout"},
	}
}

func (a adminNavbar) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "MithaiMart | %s (admin) v\n", a.user.Name); err != nil {
		return err
	}
	for _, it := range a.Items() {
		if _, err := fmt.Fprintf(w, "    - %s  [%s]\n", it.Label, it.Command); err != nil {
			return err
		}
	}
	return nil
}

func renderBar(w io.Writer, title string, items []NavItem) error {
	if _, err := fmt.Fprint(w, title); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(w, "  | %s [%s]", it.Label, it.Command); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
