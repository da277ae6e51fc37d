// Package client contains the storefront's transport to the auth server
// and the bootstrap of its local SQLite database.
//
// # Overview
//
//  1. Client is the transport-agnostic contract: Register, Login, Me,
//     AdminSummary and Ping.
//  2. HTTPClient implements it over JSON/HTTP with a per-request timeout
//     and no retries.
//  3. InitDatabase and RunMigrations open the local SQLite file and apply
//     the embedded goose migrations.
//
// # Error Handling
//
// A non-2xx answer becomes *APIError whose message is the server's text and
// which unwraps to a common sentinel (ErrInvalidCredentials,
// ErrDuplicateAccount, ErrUnauthorized, ...). Transport failures and
// timeouts become *NetworkError, matching common.ErrNetwork.
package client
