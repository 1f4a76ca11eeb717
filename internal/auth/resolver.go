package auth

import "github.com/kolah/apiconsole/internal/model"

// Resolver picks the strategy for a security scheme.
type Resolver struct {
	oauth2 OAuth2Settings
}

func NewResolver(settings OAuth2Settings) *Resolver {
	if settings.Authorizations == nil {
		settings.Authorizations = NewAuthorizations()
	}
	return &Resolver{oauth2: settings}
}

// Authorizations returns the registry OAuth2 attempts wait on.
func (r *Resolver) Authorizations() *Authorizations {
	return r.oauth2.Authorizations
}

// For returns the strategy for scheme. A nil scheme is anonymous; scheme
// kinds without a strategy yield an error matching ErrUnknownStrategy.
func (r *Resolver) For(scheme *model.SecurityScheme, credentials Credentials) (Strategy, error) {
	if scheme == nil {
		return Anonymous(), nil
	}

	switch scheme.Kind {
	case model.KindAnonymous:
		return Anonymous(), nil
	case model.KindBasic:
		return NewBasic(scheme, credentials), nil
	case model.KindOAuth2:
		strategy, err := NewOAuth2(scheme, credentials, r.oauth2)
		if err != nil {
			return nil, err
		}
		return strategy, nil
	default:
		return nil, &UnknownStrategyError{Scheme: scheme.Name, Type: scheme.Type}
	}
}
