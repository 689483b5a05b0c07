package spotify

import (
	"errors"
	"fmt"
)

// ErrorKind tags gateway failures so callers can tell the refresh path
// from hard failures.
type ErrorKind int

const (
	// AuthExpired means the provider rejected the bearer token; the
	// caller may refresh credentials and retry.
	AuthExpired ErrorKind = iota
	// RequestFailed covers transport errors, timeouts and non-auth
	// error statuses. Not retried.
	RequestFailed
	// MalformedResponse means the provider returned a body that could
	// not be decoded.
	MalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case AuthExpired:
		return "auth_expired"
	case RequestFailed:
		return "request_failed"
	case MalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// GatewayError is the typed failure of a provider API call.
type GatewayError struct {
	Kind   ErrorKind
	Status int // HTTP status when one was received, 0 otherwise
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spotify gateway %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("spotify gateway %s (status %d)", e.Kind, e.Status)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsAuthExpired reports whether err is a gateway error caused by an
// expired or rejected bearer token.
func IsAuthExpired(err error) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr) && gerr.Kind == AuthExpired
}
