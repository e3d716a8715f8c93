package wiki

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network failures and non-success HTTP statuses.
	ErrTransport = errors.New("wiki: transport failure")
	// ErrMalformed covers bodies that do not decode and API error objects.
	ErrMalformed = errors.New("wiki: malformed response")
	// ErrNoResult means the response lacked the expected data.
	ErrNoResult = errors.New("wiki: no result")
)

// APIError is an error object returned by the action API itself.
type APIError struct {
	Code string
	Info string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Info)
}

// Unwrap classifies missing pages as absent data and everything else as a
// malformed exchange.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "missingtitle", "invalidtitle", "nosuchpageid":
		return ErrNoResult
	default:
		return ErrMalformed
	}
}
