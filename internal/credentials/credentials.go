// Package credentials holds the field rules shared by the credential entry
// form on the client and the issuer on the server.
package credentials

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/mithaimart/internal/common"
)

// Field keys used in error maps.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

const (
	MsgNameRequired     = "Name is required"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "Minimum 6 characters"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldErrors maps a field key to its message.
type FieldErrors map[string]string

// Validate checks every field and reports all failures at once.
// The name is only required when requireName is set (registration).
func Validate(name, email, password string, requireName bool) FieldErrors {
	errs := FieldErrors{}

	switch {
	case email == "":
		errs[FieldEmail] = MsgEmailRequired
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = MsgEmailInvalid
	}

	switch {
	case password == "":
		errs[FieldPassword] = MsgPasswordRequired
	case utf8.RuneCountInString(password) < MinPasswordLength:
		errs[FieldPassword] = MsgPasswordTooShort
	}

	if requireName && strings.TrimSpace(name) == "" {
		errs[FieldName] = MsgNameRequired
	}

	return errs
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// First returns one message in a fixed field order, or "" when empty.
func (e FieldErrors) First() string {
	for _, k := range []string{FieldName, FieldEmail, FieldPassword} {
		if msg, ok := e[k]; ok {
			return msg
		}
	}
	return ""
}

// Err returns nil for an empty map, otherwise a *ValidationError.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &ValidationError{Fields: e}
}

// ValidationError carries every field failure and matches
// common.ErrInvalidInput. Its message is the first failure only.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string { return v.Fields.First() }

func (v *ValidationError) Unwrap() error { return common.ErrInvalidInput }
