// Package console executes "try it" requests against an inspected API: it
// renders the URL, builds the request, authenticates with the selected
// scheme and sends it.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"github.com/kolah/apiconsole/internal/auth"
	"github.com/kolah/apiconsole/internal/client"
	"github.com/kolah/apiconsole/internal/inspector"
	"github.com/kolah/apiconsole/internal/model"
	"github.com/kolah/apiconsole/internal/pathbuilder"
	"github.com/kolah/apiconsole/internal/request"
	"github.com/kolah/apiconsole/internal/uritemplate"
)

// Input is everything the user entered for one execution.
type Input struct {
	Resource *inspector.Resource
	Method   *inspector.Method

	BaseURIParameters map[string]string
	// URIParameters are looked up by name in every path segment.
	URIParameters   map[string]string
	QueryParameters map[string]string
	FormParameters  map[string]string
	Headers         map[string]string

	// MediaType overrides the method's default media type.
	MediaType string
	Body      string
}

// Result is the outcome of Execute. Err is set for every failure,
// including missing URI parameters.
type Result struct {
	RequestURL                 string
	MissingURIParameters       bool
	DisallowedAnonymousRequest bool
	Response                   *request.Response
	Err                        error
}

type Options struct {
	Keychain   *auth.Keychain
	Resolver   *auth.Resolver
	Proxy      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Executor struct {
	doc        *model.Document
	keychain   *auth.Keychain
	resolver   *auth.Resolver
	proxy      string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(doc *model.Document, opts Options) *Executor {
	e := &Executor{
		doc:        doc,
		keychain:   opts.Keychain,
		resolver:   opts.Resolver,
		proxy:      opts.Proxy,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
	if e.keychain == nil {
		e.keychain = auth.NewKeychain()
	}
	if e.resolver == nil {
		e.resolver = auth.NewResolver(auth.OAuth2Settings{Proxy: opts.Proxy, Logger: opts.Logger})
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Execute runs authorize, exchange and send in order.
func (e *Executor) Execute(ctx context.Context, in Input) Result {
	var result Result

	requestURL, err := e.requestURL(in)
	if err != nil {
		result.Err = err
		result.MissingURIParameters = errors.Is(err, uritemplate.ErrMissingRequiredParameter)
		return result
	}
	result.RequestURL = requestURL

	target := e.proxy + requestURL
	if query := filterEmpty(in.QueryParameters); len(query) > 0 {
		target, err = withQuery(target, query)
		if err != nil {
			result.Err = err
			return result
		}
	}

	body := NewBodyOptions(in.Method)
	if in.MediaType != "" {
		body.MediaType = in.MediaType
	}

	req := request.Create(target, in.Method.Verb())
	if form := filterEmpty(in.FormParameters); len(form) > 0 {
		req.Data(request.Fields(form))
	}
	if headers := filterEmpty(in.Headers); len(headers) > 0 {
		req.Headers(headers)
	}
	if body.MediaType != "" {
		req.Header("Content-Type", body.MediaType)
	}
	if body.ShowBody() {
		req.Data(request.Raw(in.Body))
	}

	scheme := e.selectedScheme(in)
	if scheme.Kind == model.KindAnonymous && !in.Method.AllowsAnonymousAccess() {
		result.DisallowedAnonymousRequest = true
		e.logger.Warn("method does not allow anonymous access", "method", in.Method.Verb(), "resource", in.Resource.Path())
	}

	strategy, err := e.strategy(scheme)
	if err != nil {
		result.Err = err
		return result
	}

	token, err := strategy.Authenticate(ctx)
	if err != nil {
		result.Err = fmt.Errorf("authenticating: %w", err)
		return result
	}
	token.Sign(req)

	opts := req.ToOptions()
	e.logger.Debug("sending request", "method", opts.Method, "url", opts.URL)
	resp, err := request.Send(ctx, e.httpClient, opts)
	if err != nil {
		result.Err = err
		return result
	}
	e.logger.Info("response received", "status", resp.Status, "url", resp.RequestURL)
	result.Response = resp
	return result
}

func (e *Executor) requestURL(in Input) (string, error) {
	c := client.Create(e.doc, func(c *client.Configuration) {
		c.BaseURIParameters(e.baseURIParameters(in.BaseURIParameters))
	})
	base, err := c.BaseURI()
	if err != nil {
		return "", err
	}

	contexts := pathbuilder.Contexts(in.Resource.PathSegments)
	for _, c := range contexts {
		maps.Copy(c, in.URIParameters)
	}
	path, err := in.Resource.PathBuilder()(contexts)
	if err != nil {
		return "", err
	}
	return base + path, nil
}

// baseURIParameters seeds declared defaults and overlays entered values.
func (e *Executor) baseURIParameters(entered map[string]string) map[string]string {
	values := make(map[string]string, len(e.doc.BaseURIParameters))
	for _, p := range e.doc.BaseURIParameters {
		if p.Default != "" {
			values[p.Name] = p.Default
		}
	}
	maps.Copy(values, filterEmpty(entered))
	return values
}

// anonymousScheme stands in for the keychain's anonymous selection.
var anonymousScheme = &model.SecurityScheme{Name: auth.AnonymousScheme, Kind: model.KindAnonymous}

// selectedScheme returns the method's scheme chosen in the keychain. A
// selection the method does not reference is sent anonymously.
func (e *Executor) selectedScheme(in Input) *model.SecurityScheme {
	if e.keychain.IsAnonymous() {
		return anonymousScheme
	}
	scheme, ok := in.Method.SecuritySchemes()[e.keychain.Selected]
	if !ok {
		e.logger.Warn("selected security scheme is not used by this method, sending request unauthenticated",
			"scheme", e.keychain.Selected, "method", in.Method.Verb(), "resource", in.Resource.Path())
		return anonymousScheme
	}
	return scheme
}

// strategy resolves scheme. Schemes without a strategy fall back to
// anonymous; every other resolution error is returned.
func (e *Executor) strategy(scheme *model.SecurityScheme) (auth.Strategy, error) {
	strategy, err := e.resolver.For(scheme, e.keychain.SelectedCredentials())
	if errors.Is(err, auth.ErrUnknownStrategy) {
		e.logger.Warn("unsupported security scheme, sending request unauthenticated", "scheme", scheme.Name, "error", err)
		return auth.Anonymous(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving authentication strategy: %w", err)
	}
	return strategy, nil
}

func withQuery(target string, query map[string]string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parsing request url: %w", err)
	}
	q := u.Query()
	for name, value := range query {
		q.Set(name, value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// filterEmpty drops entries whose value is empty or only whitespace.
func filterEmpty(values map[string]string) map[string]string {
	out := maps.Clone(values)
	maps.DeleteFunc(out, func(_, v string) bool {
		return strings.TrimSpace(v) == ""
	})
	return out
}
