// Package models defines client-side data models used by the MithaiMart CLI.
package models

import (
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/common"
)

// User is the account as the server describes it. Role decisions on the
// client are made from this value, never from the token.
type User struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  common.Role `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == common.RoleAdmin
}

// Session is what login and register return, and also the persisted form
// of the signed-in state.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminSummary is the payload of the admin-only endpoint.
type AdminSummary struct {
	Admin      User      `json:"admin"`
	ServerTime time.Time `json:"server_time"`
}
