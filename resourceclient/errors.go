package resourceclient

import (
	"errors"

	"github.com/goliatone/go-resource-client/transport"
)

// APIError is the structured failure for network, status and decode errors.
type APIError = transport.Error

// ErrorKind classifies an APIError.
type ErrorKind = transport.Kind

const (
	KindNetwork = transport.KindNetwork
	KindStatus  = transport.KindStatus
	KindDecode  = transport.KindDecode
	KindEncode  = transport.KindEncode
)

// ErrClosed is returned by operations on a closed client.
var ErrClosed = errors.New("resourceclient: client is closed")

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	return transport.IsNotFound(err)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	return transport.StatusCode(err)
}
