// Package cli provides the gophersocial command-line client.
//
// It wires configuration, the local session database and the HTTP API
// client into a cobra command tree. Each command opens the session store,
// performs one authentication operation and closes it again:
//
//   - register, login, logout, whoami
//   - refresh
//   - update-password
//   - forgot-password, reset-password
//
// The access and refresh tokens returned by login are kept in the session
// database so that later invocations can refresh them or call endpoints that
// require a bearer token.
package cli
