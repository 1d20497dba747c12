package auth

import (
	"net/http"
)

// BearerAuthenticator sends a token, as GitHub and most artifact stores accept.
type BearerAuthenticator struct {
	token string
}

// NewBearerAuthenticator creates a bearer token authenticator.
func NewBearerAuthenticator(token string) *BearerAuthenticator {
	return &BearerAuthenticator{token: token}
}

// Authenticate sets Authorization: Bearer. An empty token leaves the request anonymous.
func (a *BearerAuthenticator) Authenticate(req *http.Request) error {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	return nil
}
