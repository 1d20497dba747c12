package auth

import (
	"net/http"
)

// BasicAuthenticator sends HTTP basic credentials.
type BasicAuthenticator struct {
	username string
	password string
}

// NewBasicAuthenticator creates a basic auth authenticator.
func NewBasicAuthenticator(username, password string) *BasicAuthenticator {
	return &BasicAuthenticator{username: username, password: password}
}

// Authenticate sets Authorization: Basic unless both fields are empty.
func (a *BasicAuthenticator) Authenticate(req *http.Request) error {
	if a.username != "" || a.password != "" {
		req.SetBasicAuth(a.username, a.password)
	}
	return nil
}
