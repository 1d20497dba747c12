// Package auth authenticates requests to private compiler mirrors.
//
// Credentials are kept per mirror host in the operating system keychain
// and attached only to requests for that host.
package auth

import (
	"net/http"
)

// Authenticator adds credentials to an outgoing request.
type Authenticator interface {
	Authenticate(req *http.Request) error
}

// Type is the kind of a stored credential.
type Type string

const (
	TypeBearer Type = "bearer"
	TypeBasic  Type = "basic"
)

// Credential is the secret stored for one mirror host.
type Credential struct {
	Type     Type   `json:"type"`
	Username string `json:"username,omitempty"`
	Secret   string `json:"secret"`
}

// Authenticator returns the request authenticator for c.
func (c Credential) Authenticator() Authenticator {
	if c.Type == TypeBasic {
		return NewBasicAuthenticator(c.Username, c.Secret)
	}
	return NewBearerAuthenticator(c.Secret)
}
