package models

import (
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/common"
)

// Account is a registered storefront identity as persisted by the server.
// PasswordHash holds an argon2id PHC string and never leaves the server.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         common.Role
	CreatedAt    time.Time
}

// AccountView is the public projection of an Account sent to clients.
type AccountView struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  common.Role `json:"role"`
}

// View projects the account to its client-visible fields.
func (a *Account) View() AccountView {
	return AccountView{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}
