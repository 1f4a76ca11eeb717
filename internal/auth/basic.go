package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kolah/apiconsole/internal/model"
)

// Basic authenticates with a precomputed HTTP Basic token.
type Basic struct {
	scheme *model.SecurityScheme
	token  *BasicToken
}

func NewBasic(scheme *model.SecurityScheme, credentials Credentials) *Basic {
	return &Basic{
		scheme: scheme,
		token:  &BasicToken{encoded: EncodeBase64(credentials.Username + ":" + credentials.Password)},
	}
}

func (b *Basic) Authenticate(context.Context) (Token, error) {
	return b.token, nil
}

type BasicToken struct {
	encoded string
}

func (t *BasicToken) Sign(r Request) {
	r.Header("Authorization", "Basic "+t.encoded)
}

func (t *BasicToken) String() string {
	return t.encoded
}

// ParseBasicToken turns an already encoded Basic token back into
// credentials. Malformed input is decoded best-effort and logged.
func ParseBasicToken(encoded string, logger *slog.Logger) Credentials {
	encoded = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(encoded), "Basic "))
	decoded, clean := DecodeBase64(encoded)
	if !clean {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("invalid base64 characters in basic token, decoding best-effort",
			"valid", "A-Z, a-z, 0-9, '+', '/' and '='")
	}
	user, pass, _ := strings.Cut(decoded, ":")
	return Credentials{Username: user, Password: pass}
}
