// Package client contains client-side building blocks for gophersocial.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     server's authentication endpoints.
//  2. An HTTP implementation (see HTTPClient) that speaks the JSON envelope
//     used by the server and maps failures to errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     CLI's SQLite session database.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable and a 401 is ErrUnauthorized; both
// match with errors.Is. A refused request is an *APIError carrying the
// server's status kind, message and reasons.
package client
