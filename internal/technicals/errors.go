package technicals

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match with errors.Is.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrUpstreamEmpty    = errors.New("upstream returned no data")
	ErrInsufficientData = errors.New("insufficient data")
	ErrTransport        = errors.New("transport error")
	ErrSchemaMismatch   = errors.New("schema mismatch")
)

// Error carries a kind plus the key (symbol, field or indicator) it concerns.
type Error struct {
	Kind   error
	Key    string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Key != "" {
		fmt.Fprintf(&b, " [%s]", e.Key)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func ConfigurationError(key, detail string) *Error {
	return &Error{Kind: ErrConfiguration, Key: key, Detail: detail}
}

func UpstreamEmptyError(key string) *Error {
	return &Error{Kind: ErrUpstreamEmpty, Key: key, Detail: "no row returned"}
}

func InsufficientDataError(key string, missing ...string) *Error {
	return &Error{Kind: ErrInsufficientData, Key: key, Detail: "missing " + strings.Join(missing, ", ")}
}

func TransportError(err error) *Error {
	return &Error{Kind: ErrTransport, Err: err}
}

func SchemaMismatchError(key, detail string) *Error {
	return &Error{Kind: ErrSchemaMismatch, Key: key, Detail: detail}
}

// KindOf returns a short label for err's kind, used for metrics and logs.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrUpstreamEmpty):
		return "upstream_empty"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	default:
		return "internal"
	}
}
