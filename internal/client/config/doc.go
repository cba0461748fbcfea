// Package config loads runtime configuration for the gophersocial CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with GOPHERSOCIAL_CLIENT_, for example
//     GOPHERSOCIAL_CLIENT_SERVER_URL.
//  3. Command-line flags (see RegisterFlags), which override earlier values.
//
// Supported flags
//
//	-a, --server string     base URL of the server
//	    --session string    path of the local session database
//	    --timeout duration  HTTP request timeout (e.g. 5s)
package config
