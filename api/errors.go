package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ContextError is returned by the context gate when an operation requires a
// narrower API context than the one currently selected. It is a hard stop:
// the gated operation never reaches the network.
type ContextError struct {
	RequiredLevel   ContextLevel
	CredentialLevel AccessLevel
	Guidance        string
}

func (e *ContextError) Error() string {
	msg := fmt.Sprintf(
		"permit context error: this operation requires an %s, but the client is operating with an %s",
		e.RequiredLevel.KeyLevel(), e.CredentialLevel,
	)
	if e.Guidance != "" {
		msg += "; " + e.Guidance
	}
	return msg
}

// ContextChangeError is returned when an explicit Set*LevelContext call names
// an organization, project or environment outside the api key's permitted
// scope.
type ContextChangeError struct {
	Field string
	Value string
}

func (e *ContextChangeError) Error() string {
	return fmt.Sprintf(
		"permit context change error: %s %q is outside the api key's permitted scope",
		e.Field, e.Value,
	)
}

// ConnectionError wraps a transport-level failure (DNS, refused connection,
// timeout) talking to the control plane or the PDP. It is never retried by
// the SDK.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("permit connection error calling %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx HTTP response from the control plane or the PDP,
// carrying enough detail for the caller to branch on.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       []byte
}

func (e *APIError) Error() string {
	body := string(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("permit api error: %s %s returned %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Conflict reports whether the server answered 409, typically "already
// exists".
func (e *APIError) Conflict() bool {
	return e.StatusCode == http.StatusConflict
}

// ValidationFailed reports whether the server rejected the request payload
// with 422.
func (e *APIError) ValidationFailed() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// AsAPIError unwraps err into an *APIError if one is in its chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// AsContextError unwraps err into a *ContextError if one is in its chain.
func AsContextError(err error) (*ContextError, bool) {
	var ctxErr *ContextError
	ok := errors.As(err, &ctxErr)
	return ctxErr, ok
}

// AsContextChangeError unwraps err into a *ContextChangeError if one is in
// its chain.
func AsContextChangeError(err error) (*ContextChangeError, bool) {
	var chErr *ContextChangeError
	ok := errors.As(err, &chErr)
	return chErr, ok
}

// AsConnectionError unwraps err into a *ConnectionError if one is in its
// chain.
func AsConnectionError(err error) (*ConnectionError, bool) {
	var connErr *ConnectionError
	ok := errors.As(err, &connErr)
	return connErr, ok
}
