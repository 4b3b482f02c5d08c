package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindNetwork means no complete response was received.
	KindNetwork Kind = iota + 1
	// KindHTTP means the upstream answered with a non-2xx status.
	KindHTTP
	// KindDecode means a 2xx response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CodeInvalidToken is the upstream error code for an unknown or expired token.
const CodeInvalidToken = "invalid_token"

// ErrInvalidInput wraps input validation failures detected before any request is sent.
var ErrInvalidInput = errors.New("invalid input")

// Error is returned by every Client call that reaches the network.
// Status, Body, Code and Message are set for KindHTTP; Status and Body are
// also kept for KindDecode.
type Error struct {
	Kind    Kind
	Op      string // "METHOD /path"
	Status  int
	Body    []byte
	Code    string // "error" field of a JSON error body
	Message string // "message" field of a JSON error body
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		detail := e.Code
		if e.Message != "" {
			if detail != "" {
				detail += ": "
			}
			detail += e.Message
		}
		if detail == "" {
			return fmt.Sprintf("novo api: %s: http %d", e.Op, e.Status)
		}
		return fmt.Sprintf("novo api: %s: http %d: %s", e.Op, e.Status, detail)
	default:
		return fmt.Sprintf("novo api: %s: %s error: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsInvalidToken reports whether the upstream rejected the session token.
func IsInvalidToken(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindHTTP && e.Code == CodeInvalidToken
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
