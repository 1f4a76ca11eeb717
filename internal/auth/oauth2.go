package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kolah/apiconsole/internal/model"
	"golang.org/x/oauth2"
)

// Opener presents an authorization URL to the user, typically in a browser.
type Opener interface {
	Open(ctx context.Context, url string) error
}

type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}

// OAuth2Settings are the console-wide inputs of the authorization code flow.
type OAuth2Settings struct {
	RedirectURI    string
	Proxy          string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Opener         Opener
	Authorizations *Authorizations
	Logger         *slog.Logger
}

// OAuth2 runs the authorization code flow: the user authorizes in a browser,
// the redirect delivers a code, and the code is exchanged for a token.
type OAuth2 struct {
	scheme   *model.SecurityScheme
	config   *oauth2.Config
	settings OAuth2Settings
	newToken func(accessToken string) Token
}

func NewOAuth2(scheme *model.SecurityScheme, credentials Credentials, settings OAuth2Settings) (*OAuth2, error) {
	if scheme.Settings.AuthorizationURI == "" {
		return nil, fmt.Errorf("oauth2 scheme %s: authorizationUri is required", scheme.Name)
	}
	if scheme.Settings.AccessTokenURI == "" {
		return nil, fmt.Errorf("oauth2 scheme %s: accessTokenUri is required", scheme.Name)
	}
	if settings.Opener == nil {
		return nil, errors.New("oauth2: no opener configured for the authorization request")
	}
	if settings.Authorizations == nil {
		settings.Authorizations = NewAuthorizations()
	}
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}

	return &OAuth2{
		scheme: scheme,
		config: &oauth2.Config{
			ClientID:     credentials.ClientID,
			ClientSecret: credentials.ClientSecret,
			RedirectURL:  settings.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   scheme.Settings.AuthorizationURI,
				TokenURL:  settings.Proxy + scheme.Settings.AccessTokenURI,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		settings: settings,
		newToken: tokenConstructorFor(scheme),
	}, nil
}

// Authenticate authorizes and then exchanges the received code.
func (o *OAuth2) Authenticate(ctx context.Context) (Token, error) {
	code, err := o.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return o.exchange(ctx, code)
}

func (o *OAuth2) authorize(ctx context.Context) (string, error) {
	pending := o.settings.Authorizations.Begin()
	authURL := o.AuthorizationURL(pending.ID())

	o.settings.Logger.Info("opening oauth2 authorization", "scheme", o.scheme.Name, "state", pending.ID())
	if err := o.settings.Opener.Open(ctx, authURL); err != nil {
		pending.Cancel()
		return "", fmt.Errorf("opening authorization url: %w", err)
	}

	code, err := pending.Wait(ctx, o.settings.Timeout)
	if err != nil {
		return "", err
	}
	o.settings.Logger.Debug("received authorization code", "scheme", o.scheme.Name)
	return code, nil
}

func (o *OAuth2) exchange(ctx context.Context, code string) (Token, error) {
	if o.settings.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.settings.HTTPClient)
	}

	tok, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	o.settings.Logger.Info("obtained oauth2 access token", "scheme", o.scheme.Name, "token_type", tok.TokenType)
	return o.newToken(tok.AccessToken), nil
}

// AuthorizationURL returns the URL the user is sent to for state.
func (o *OAuth2) AuthorizationURL(state string) string {
	return o.config.AuthCodeURL(state)
}

func tokenConstructorFor(scheme *model.SecurityScheme) func(string) Token {
	if scheme.AccessTokenInQuery() {
		return func(accessToken string) Token {
			return &QueryParameterToken{AccessToken: accessToken}
		}
	}
	return func(accessToken string) Token {
		return &HeaderToken{AccessToken: accessToken}
	}
}

// QueryParameterToken signs with an access_token query parameter.
type QueryParameterToken struct {
	AccessToken string
}

func (t *QueryParameterToken) Sign(r Request) {
	r.QueryParam("access_token", t.AccessToken)
}

// HeaderToken signs with a bearer Authorization header.
type HeaderToken struct {
	AccessToken string
}

func (t *HeaderToken) Sign(r Request) {
	r.Header("Authorization", "Bearer "+t.AccessToken)
}
