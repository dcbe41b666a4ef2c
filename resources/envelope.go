package resources

import (
	"github.com/bytedance/sonic"
	"github.com/goliatone/go-resource-client/transport"
)

// Envelope is the API's standard response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Decode unmarshals body into an Envelope. A shape mismatch is reported as a
// decode error.
func Decode[T any](body []byte) (Envelope[T], error) {
	var env Envelope[T]
	if len(body) == 0 {
		return env, nil
	}
	if err := sonic.Unmarshal(body, &env); err != nil {
		return env, transport.NewDecodeError(err)
	}
	return env, nil
}
