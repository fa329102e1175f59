package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable matches every transport failure: no response, or a
	// response that is not an envelope.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches envelope code 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrResponseTooLarge is wrapped by the transport failure for a body
	// over the dispatcher limit.
	ErrResponseTooLarge = errors.New("response too large")
)

// Generic notification texts used when the server gives none.
const (
	MessageNetworkError     = "network error"
	MessageRequestFailed    = "request failed"
	MessageResponseTooLarge = "response too large"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport: the call produced no usable envelope.
	KindTransport Kind = iota + 1
	// KindApplication: an envelope with a code other than 200 and 401.
	KindApplication
	// KindUnauthorized: an envelope with code 401. Session-fatal.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Failure is the error value of every failed Dispatcher call. Code is the
// envelope code (0 for transport failures) and Message the text shown to
// the user.
type Failure struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	if f.Code != 0 {
		return fmt.Sprintf("%s (code %d)", f.Message, f.Code)
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// Is lets callers match failures with errors.Is(err, ErrUnauthorized) and
// errors.Is(err, ErrUnavailable).
func (f *Failure) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return f.Kind == KindUnauthorized
	case ErrUnavailable:
		return f.Kind == KindTransport
	}
	return false
}

// AsFailure unwraps err into a *Failure.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}
