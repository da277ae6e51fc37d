// Package cli provides the interactive MithaiMart storefront shell.
//
// It wires configuration, the local session database, the HTTP client and
// the session manager, then runs a REPL on top of the credential form, the
// guarded navigator and the role-keyed navbar.
//
// Commands:
//   - login / register: fill and submit the credential form
//   - logout: end the session
//   - whoami: ask the server who the token belongs to
//   - open <route>: navigate to /, /purchase or /admin
//   - summary: fetch the admin-only server summary
//   - menu: show the navbar for the current user
//
// App.Run blocks until the user exits or the context is cancelled.
package cli
