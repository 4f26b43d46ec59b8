package pitch

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pitch package.
var (
	// ErrNoAPIKey is returned when an API key is required but missing.
	ErrNoAPIKey = errors.New("pitch: API key required")

	// ErrUnknownProvider is returned when no provider is registered under the requested id.
	ErrUnknownProvider = errors.New("pitch: unknown provider")

	// ErrNoProviders is returned when a gateway is constructed without providers.
	ErrNoProviders = errors.New("pitch: at least one provider required")
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindTransport covers connection failures, timeouts, rate limits and
	// remote 5xx responses. Transport errors are retried.
	KindTransport Kind = iota

	// KindAuth covers invalid or rejected credentials. Never retried.
	KindAuth

	// KindParse covers responses in which no expected markers were found.
	KindParse
)

// String returns a human-readable kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the single error type the gateway surfaces to callers.
// Provider adapters translate their native failures into it at the
// boundary; no provider-specific error type leaks out.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Provider identifies the originating provider.
	Provider string

	// Op is the gateway operation ("generate", "feedback", "validate").
	Op string

	// Message is the human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("pitch [%s/%s]: %s: %s", e.Provider, e.Op, e.Kind, e.Message)
	}
	return fmt.Sprintf("pitch [%s]: %s: %s", e.Provider, e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the call may be retried.
func (e *Error) IsRetryable() bool {
	return e.Kind == KindTransport
}

// Error checking helpers.

// IsAuth returns true if the error is a credential failure.
func IsAuth(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == KindAuth
}

// IsTransport returns true if the error is a transport failure.
func IsTransport(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == KindTransport
}

// IsParse returns true if the error means no markers were found.
func IsParse(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == KindParse
}

// transportError builds a transport-kind Error.
func transportError(provider, message string, cause error) *Error {
	return &Error{Kind: KindTransport, Provider: provider, Message: message, Cause: cause}
}

// authError builds an auth-kind Error.
func authError(provider, message string, cause error) *Error {
	return &Error{Kind: KindAuth, Provider: provider, Message: message, Cause: cause}
}

// tagOp stamps the gateway operation onto an Error, leaving other
// errors untouched.
func tagOp(err error, op string) error {
	var ge *Error
	if errors.As(err, &ge) && ge.Op == "" {
		ge.Op = op
	}
	return err
}
