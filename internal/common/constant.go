// Package common contains shared constants and sentinel errors used across
// the fleamarket client packages.
package common

// AuthorizationHeaderName carries the bearer credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the raw credential in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is set to a fresh UUID on every dispatched request.
const RequestIDHeaderName = "X-Request-Id"

// Envelope codes with a fixed meaning for the client.
const (
	CodeOK           = 200
	CodeUnauthorized = 401
)

// Roles recognised by the route guard.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Local storage keys.
const (
	CredentialKey  = "token"
	ProfileInfoKey = "userInfo"
)
