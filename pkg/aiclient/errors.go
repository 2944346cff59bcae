package aiclient

import (
	"errors"
	"fmt"
)

// Op names the endpoint an APIError came from.
type Op string

const (
	OpExtraction  Op = "extraction"
	OpTranslation Op = "translation"
)

// ErrAuthenticationRequired is returned when no bearer credentials are
// configured or the endpoint rejects them. No request body is sent in the
// missing-credentials case.
var ErrAuthenticationRequired = errors.New("authentication required")

// APIError is a non-2xx or {success:false} response from an endpoint. The
// message is the server-provided error text, passed through verbatim so the
// reviewer sees exactly what the endpoint said.
type APIError struct {
	Op         Op
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// String includes the endpoint and status for log lines, keeping Error()
// itself to the bare server message.
func (e *APIError) String() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s endpoint: %s (HTTP %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s endpoint: %s", e.Op, e.Message)
}

// IsAPIError unwraps err into an *APIError if one is in the chain.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
