package judge

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when the judge API answers with a non-2xx status.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the response body, or a generic message when the body is empty.
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError builds an APIError from a response body.
func newAPIError(statusCode int, body []byte) *APIError {
	msg := string(body)
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status %d", statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

// IsNotFound reports whether err is an [APIError] with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
