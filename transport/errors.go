package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

// Kind classifies a failed request.
type Kind string

const (
	// KindNetwork covers connection failures, timeouts and cancellation.
	KindNetwork Kind = "network"
	// KindStatus is a response with a non-2xx status code.
	KindStatus Kind = "status"
	// KindDecode is a 2xx response whose body did not have the expected shape.
	KindDecode Kind = "decode"
	// KindEncode is a request body that could not be encoded. Nothing was sent.
	KindEncode Kind = "encode"
)

// Error is the structured failure returned for every request that did not
// produce a usable response. Consumers branch on Status (404 in particular)
// instead of parsing messages.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewDecodeError wraps a body that failed to unmarshal.
func NewDecodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: "unexpected response shape", Err: err}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func statusError(status int, body []byte) *Error {
	return &Error{
		Kind:    KindStatus,
		Status:  status,
		Message: messageFromBody(status, body),
	}
}

// messageFromBody prefers the API's {"message": "..."} envelope.
func messageFromBody(status int, body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(body) > 0 && sonic.Unmarshal(body, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}

func retryable(err *Error) bool {
	switch err.Kind {
	case KindNetwork:
		return true
	case KindStatus:
		return err.Status >= 500 || err.Status == http.StatusTooManyRequests || err.Status == http.StatusRequestTimeout
	}
	return false
}
