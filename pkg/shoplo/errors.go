package shoplo

import (
	"errors"
	"fmt"
)

// Local validation failures. Wrapped values carry the offending input;
// match with errors.Is.
var (
	// ErrInvalidFormat is returned by SetResponseFormat for anything other
	// than json or xml.
	ErrInvalidFormat = errors.New("unsupported response format")

	// ErrUnsupportedMethod is returned by Execute for HTTP verbs outside
	// GET, POST, PUT and DELETE. No request is sent.
	ErrUnsupportedMethod = errors.New("unsupported http method")

	// ErrUnknownFormat guards the decode path against an invalid internal
	// format state. Unreachable through the public API, which validates
	// formats up front.
	ErrUnknownFormat = errors.New("unknown response format")
)

// TransportError reports a failure to complete the HTTP exchange (DNS,
// connect, TLS, timeout, redirect cap). The client never retries; callers
// that want the underlying cause can unwrap it.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response body that could not be decoded in the
// configured format.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
