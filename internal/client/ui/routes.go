package ui

import (
	"github.com/dmitrijs2005/mithaimart/internal/client/guard"
)

const (
	RouteLanding  = guard.LandingRoute
	RoutePurchase = "/purchase"
	RouteAdmin    = "/admin"
)

// Route is an entry of the route table. A nil Policy means the view is
// public.
type Route struct {
	Path   string
	Title  string
	Policy *guard.Policy
}

// DefaultRoutes is the storefront route table.
func DefaultRoutes() []Route {
	authenticated := guard.Authenticated()
	admin := guard.Admin()

	return []Route{
		{Path: RouteLanding, Title: "Welcome to MithaiMart"},
		{Path: RoutePurchase, Title: "Purchase", Policy: &authenticated},
		{Path: RouteAdmin, Title: "Admin Dashboard", Policy: &admin},
	}
}
