package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kolah/apiconsole/internal/auth"
	"github.com/kolah/apiconsole/internal/callback"
	"github.com/kolah/apiconsole/internal/console"
	"github.com/kolah/apiconsole/internal/inspector"
	"github.com/kolah/apiconsole/internal/model"
	"github.com/kolah/apiconsole/internal/templates"
)

func TryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "try METHOD PATH",
		Short: "Send a request to a method of the document",
		Long: `Send a request to a method of the document.

PATH is the full resource path template as printed by inspect,
e.g. /users/{id}. Parameters are given as name=value pairs.`,
		Args: cobra.ExactArgs(2),
		RunE: runTry,
	}

	flags := cmd.Flags()
	flags.StringToString("base-uri", nil, "Base URI parameters")
	flags.StringToString("uri", nil, "URI parameters")
	flags.StringToString("query", nil, "Query parameters")
	flags.StringToString("form", nil, "Form parameters")
	flags.StringToString("header", nil, "Headers")
	flags.String("body", "", "Raw request body")
	flags.String("media-type", "", "Request media type (default: the first one the method declares)")
	flags.StringP("scheme", "s", "", "Security scheme to authenticate with (default: anonymous)")
	flags.Bool("no-validate", false, "Send the request even when parameters fail validation")
	flags.Bool("no-browser", false, "Only print the OAuth2 authorization URL instead of opening a browser")

	return cmd
}

func runTry(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	resource, method, err := a.target(args[1], strings.ToLower(args[0]))
	if err != nil {
		return err
	}

	in, err := tryInput(cmd)
	if err != nil {
		return err
	}
	in.Resource = resource
	in.Method = method

	if skip, _ := cmd.Flags().GetBool("no-validate"); !skip {
		failed, err := console.Validate(in)
		if err != nil {
			return err
		}
		for _, f := range failed {
			cmd.PrintErrln(f.Error())
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d parameters failed validation", len(failed))
		}
	}

	keychain := a.cfg.NewKeychain(a.logger)
	if !keychain.IsAnonymous() && a.api.SecurityScheme(keychain.Selected) == nil {
		return fmt.Errorf("security scheme %s is not declared in %s", keychain.Selected, a.cfg.Document)
	}
	noBrowser, _ := cmd.Flags().GetBool("no-browser")

	httpClient := &http.Client{Timeout: a.cfg.HTTP.Timeout}
	resolver := auth.NewResolver(auth.OAuth2Settings{
		RedirectURI: a.cfg.OAuth2.RedirectURI,
		Proxy:       a.cfg.Proxy,
		Timeout:     a.cfg.OAuth2.Timeout,
		HTTPClient:  httpClient,
		Opener: auth.OpenerFunc(func(_ context.Context, url string) error {
			cmd.PrintErrf("Open this URL in a browser to authorize the request:\n\n  %s\n\n", url)
			if noBrowser {
				return nil
			}
			if err := launchBrowser(url); err != nil {
				a.logger.Warn("could not launch a browser", "error", err)
			}
			return nil
		}),
		Logger: a.logger,
	})
	executor := console.New(a.doc, console.Options{
		Keychain:   keychain,
		Resolver:   resolver,
		Proxy:      a.cfg.Proxy,
		HTTPClient: httpClient,
		Logger:     a.logger,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if needsCallback(method, keychain) {
		server := callback.New(a.cfg.OAuth2.CallbackAddr, a.cfg.CallbackPath(), resolver.Authorizations(), a.logger)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	var result console.Result
	g.Go(func() error {
		defer cancel()
		result = executor.Execute(gctx, in)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if result.DisallowedAnonymousRequest {
		cmd.PrintErrln("warning: this method does not allow anonymous access")
	}
	if result.MissingURIParameters {
		return fmt.Errorf("required uri parameters must be entered: %w", result.Err)
	}
	if result.Err != nil {
		return result.Err
	}

	engine, err := templates.New(a.cfg.Templates.Dir)
	if err != nil {
		return err
	}
	return engine.Render(cmd.OutOrStdout(), templates.Response, result)
}

func tryInput(cmd *cobra.Command) (console.Input, error) {
	flags := cmd.Flags()
	var in console.Input
	var err error

	fields := []struct {
		name string
		dst  *map[string]string
	}{
		{"base-uri", &in.BaseURIParameters},
		{"uri", &in.URIParameters},
		{"query", &in.QueryParameters},
		{"form", &in.FormParameters},
		{"header", &in.Headers},
	}
	for _, m := range fields {
		if *m.dst, err = flags.GetStringToString(m.name); err != nil {
			return in, err
		}
	}

	if in.Body, err = flags.GetString("body"); err != nil {
		return in, err
	}
	if in.MediaType, err = flags.GetString("media-type"); err != nil {
		return in, err
	}
	return in, nil
}

// needsCallback reports whether the selected scheme runs the authorization
// code flow and so waits for a redirect.
func needsCallback(method *inspector.Method, keychain *auth.Keychain) bool {
	if keychain.IsAnonymous() {
		return false
	}
	scheme := method.SecuritySchemes()[keychain.Selected]
	return scheme != nil && scheme.Kind == model.KindOAuth2
}
