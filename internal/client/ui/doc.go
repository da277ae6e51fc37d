// Package ui holds the storefront's presentation collaborators: the route
// table and guarded Navigator, the Notifier used for success toasts, and the
// role-keyed navbar variants. Views behind guarded routes are placeholders.
package ui
