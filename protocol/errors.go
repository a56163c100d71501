package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientInput is wrapped by the RequestError returned when a
	// message ends before a command has consumed every token it needs.
	ErrInsufficientInput = errors.New("insufficient input")
)

// Messages carried by InvalidRequest errors.
const (
	MsgInvalidFormat      = "Invalid message format"
	MsgInvalidArrayLength = "Invalid array length"
	MsgInvalidBulkLength  = "Invalid bulk string length"
	MsgInsufficientInput  = "Insufficient input"
)

type ErrorKind int

const (
	// KindInvalidRequest covers malformed framing, bad lengths and unknown
	// commands.
	KindInvalidRequest ErrorKind = iota

	// KindKeyNotFound is a well-formed GET for a key that is not stored.
	KindKeyNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindKeyNotFound:
		return "key_not_found"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// RequestError is a recoverable failure to serve one message. It is always
// rendered into an error reply and never closes the connection.
type RequestError struct {
	Kind ErrorKind

	// Message is the human readable cause of an InvalidRequest.
	Message string

	// Key is the missing key of a KeyNotFound.
	Key string

	cause error
}

func InvalidRequest(message string) *RequestError {
	return &RequestError{Kind: KindInvalidRequest, Message: message}
}

func KeyNotFound(key string) *RequestError {
	return &RequestError{Kind: KindKeyNotFound, Key: key}
}

func insufficientInput() *RequestError {
	return &RequestError{
		Kind:    KindInvalidRequest,
		Message: MsgInsufficientInput,
		cause:   ErrInsufficientInput,
	}
}

func (e *RequestError) Error() string {
	if e.Kind == KindKeyNotFound {
		return "Error Key not found: " + e.Key
	}

	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.cause
}

// Render returns the error reply line for e.
func (e *RequestError) Render() string {
	return EncodeError(e.Error())
}

// RenderError renders any error as an error reply. Errors that are not a
// RequestError are treated as an InvalidRequest carrying their message.
func RenderError(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Render()
	}

	return InvalidRequest(err.Error()).Render()
}
