package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/kolah/apiconsole/internal/model"
	"github.com/stretchr/testify/require"
)

func TestAnonymous(t *testing.T) {
	require.Same(t, Anonymous(), Anonymous())

	token, err := Anonymous().Authenticate(context.Background())
	require.NoError(t, err)

	rec := newRecorder()
	token.Sign(rec)
	require.Empty(t, rec.headers)
	require.Empty(t, rec.query)
}

func TestBasic(t *testing.T) {
	scheme := &model.SecurityScheme{Name: "basic", Type: model.SchemeTypeBasic, Kind: model.KindBasic}
	strategy := NewBasic(scheme, Credentials{Username: "Aladdin", Password: "open sesame"})

	token, err := strategy.Authenticate(context.Background())
	require.NoError(t, err)

	rec := newRecorder()
	token.Sign(rec)
	require.Equal(t, "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==", rec.headers["Authorization"])
	require.Equal(t, "QWxhZGRpbjpvcGVuIHNlc2FtZQ==", token.(*BasicToken).String())
}

func TestBasicTokenIsComputedOnce(t *testing.T) {
	strategy := NewBasic(&model.SecurityScheme{}, Credentials{Username: "u", Password: "p"})
	first, _ := strategy.Authenticate(context.Background())
	second, _ := strategy.Authenticate(context.Background())
	require.Same(t, first, second)
}

func TestParseBasicToken(t *testing.T) {
	creds := ParseBasicToken("Basic dXNlcjpwYXNz", nil)
	require.Equal(t, Credentials{Username: "user", Password: "pass"}, creds)

	creds = ParseBasicToken("dXNl cjpw\nYXNz!", nil)
	require.Equal(t, Credentials{Username: "user", Password: "pass"}, creds)
}

func TestResolverFor(t *testing.T) {
	resolver := NewResolver(OAuth2Settings{
		Opener: OpenerFunc(func(context.Context, string) error { return nil }),
	})

	tests := []struct {
		name     string
		scheme   *model.SecurityScheme
		expected any
		wantErr  error
	}{
		{name: "no scheme", scheme: nil, expected: anonymous{}},
		{
			name:     "basic",
			scheme:   &model.SecurityScheme{Name: "basic", Type: model.SchemeTypeBasic, Kind: model.KindBasic},
			expected: &Basic{},
		},
		{
			name: "oauth2",
			scheme: &model.SecurityScheme{
				Name: "oauth_2",
				Type: model.SchemeTypeOAuth2,
				Kind: model.KindOAuth2,
				Settings: model.SecuritySettings{
					AuthorizationURI: "https://auth.example.com/authorize",
					AccessTokenURI:   "https://auth.example.com/token",
				},
			},
			expected: &OAuth2{},
		},
		{
			name:    "custom scheme",
			scheme:  &model.SecurityScheme{Name: "custom", Type: "x-custom", Kind: model.KindUnsupported},
			wantErr: ErrUnknownStrategy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := resolver.For(tt.scheme, Credentials{})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, strategy)
				return
			}
			require.NoError(t, err)
			require.IsType(t, tt.expected, strategy)
		})
	}
}

func TestUnknownStrategyMessage(t *testing.T) {
	resolver := NewResolver(OAuth2Settings{})
	_, err := resolver.For(&model.SecurityScheme{Name: "x", Type: "x-custom"}, Credentials{})
	require.EqualError(t, err, "unknown authentication strategy: x-custom")

	var unknown *UnknownStrategyError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "x", unknown.Scheme)
}

func TestResolverOAuth2MissingSettings(t *testing.T) {
	resolver := NewResolver(OAuth2Settings{
		Opener: OpenerFunc(func(context.Context, string) error { return nil }),
	})
	_, err := resolver.For(&model.SecurityScheme{Name: "o", Kind: model.KindOAuth2}, Credentials{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnknownStrategy)
	require.Contains(t, err.Error(), "authorizationUri is required")
}

func TestKeychain(t *testing.T) {
	k := NewKeychain()
	require.True(t, k.IsAnonymous())

	k.Set("basic", Credentials{Username: "u"})
	k.Select("basic")
	require.False(t, k.IsAnonymous())
	require.Equal(t, "u", k.SelectedCredentials().Username)

	k.Select("")
	require.Equal(t, AnonymousScheme, k.Selected)
}
