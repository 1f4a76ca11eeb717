package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStrategy is matched by UnknownStrategyError.
	ErrUnknownStrategy = errors.New("unknown authentication strategy")

	// ErrAuthorizationTimeout is returned when no authorization code arrives
	// within the configured timeout.
	ErrAuthorizationTimeout = errors.New("authorization timed out")

	// ErrUnknownAuthorization is returned when a code is delivered for a
	// correlation id that is not pending.
	ErrUnknownAuthorization = errors.New("unknown or expired authorization")
)

// UnknownStrategyError is returned for security scheme types that have no
// authentication strategy.
type UnknownStrategyError struct {
	Scheme string
	Type   string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown authentication strategy: %s", e.Type)
}

func (e *UnknownStrategyError) Is(target error) bool {
	return target == ErrUnknownStrategy
}

// AuthorizationError carries an error reported by the authorization server
// through the redirect.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization denied: %s: %s", e.Code, e.Description)
	}
	return "authorization denied: " + e.Code
}
