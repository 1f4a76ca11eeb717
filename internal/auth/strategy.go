// Package auth resolves security schemes and stored credentials into
// strategies that produce request-signing tokens.
package auth

import "context"

// Request is the part of a request builder a Token can sign.
type Request interface {
	Header(name, value string)
	QueryParam(name, value string)
}

// Token signs an outgoing request.
type Token interface {
	Sign(r Request)
}

// Strategy produces a Token, possibly after network round trips.
type Strategy interface {
	Authenticate(ctx context.Context) (Token, error)
}

// Credentials are the values a user entered for one security scheme.
type Credentials struct {
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	ClientID     string `koanf:"client-id"`
	ClientSecret string `koanf:"client-secret"`
	// BasicToken is an encoded Basic token stored instead of a username
	// and password.
	BasicToken string `koanf:"basic-token"`
}

type noopToken struct{}

func (noopToken) Sign(Request) {}

type anonymous struct{}

func (anonymous) Authenticate(context.Context) (Token, error) {
	return noopToken{}, nil
}

var anonymousStrategy Strategy = anonymous{}

// Anonymous returns the shared strategy that signs nothing.
func Anonymous() Strategy {
	return anonymousStrategy
}
