package censys

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the search API.
// It carries both the HTTP status and the API's own error envelope so
// callers can distinguish rate limiting from quota exhaustion from
// everything else without matching message strings.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Code is the API's error code from the response body, when present.
	Code int

	// Message is the API's human-readable error message, when present.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("censys api error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("censys api error (HTTP %d)", e.StatusCode)
}

// errorEnvelope is the API's error response body.
type errorEnvelope struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// newAPIError builds an APIError from a response, tolerating bodies that
// are not the documented error envelope.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Code
		if envelope.Error != "" {
			apiErr.Message = envelope.Error
		} else {
			apiErr.Message = envelope.Status
		}
	}

	return apiErr
}

// IsRateLimited reports whether err is an API rate-limit response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsQuotaExceeded reports whether err is an API quota/permission response.
// The API answers 403 both for quota exhaustion and for plans lacking
// search access; either way the run cannot continue.
func IsQuotaExceeded(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}
