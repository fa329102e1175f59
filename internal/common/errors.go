// Package common defines shared constants and sentinel errors used across
// client layers of fleamarket. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Auth errors (invalid or malformed credential).
	ErrInvalidToken = errors.New("invalid token")

	// Session errors.
	ErrNotLoggedIn = errors.New("not logged in")

	// Input errors raised before anything is sent to the backend.
	ErrorEmptyInput = errors.New("empty input")
)
