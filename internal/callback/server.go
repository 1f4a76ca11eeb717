// Package callback serves the OAuth2 redirect target and hands the received
// authorization codes to the waiting attempts.
package callback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kolah/apiconsole/internal/auth"
)

const DefaultPath = "/oauth2/callback"

var page = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html><head><title>{{.Title}}</title></head>
<body><p>{{.Message}}</p></body></html>
`))

type Server struct {
	addr           string
	path           string
	authorizations *auth.Authorizations
	logger         *slog.Logger
	router         chi.Router
}

// New returns a server delivering codes received on path to authorizations.
func New(addr, path string, authorizations *auth.Authorizations, logger *slog.Logger) *Server {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:           addr,
		path:           path,
		authorizations: authorizations,
		logger:         logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(path, s.handleCallback)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx ends, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Debug("oauth2 callback server listening", "addr", ln.Addr().String(), "path", s.path)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving oauth2 callback: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down oauth2 callback server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get("state")

	var err error
	switch {
	case q.Get("error") != "":
		err = s.authorizations.Fail(state, &auth.AuthorizationError{
			Code:        q.Get("error"),
			Description: q.Get("error_description"),
		})
	case q.Get("code") == "":
		s.render(w, http.StatusBadRequest, "Authorization failed", "The redirect carried no authorization code.")
		return
	default:
		err = s.authorizations.Complete(state, q.Get("code"))
	}

	if errors.Is(err, auth.ErrUnknownAuthorization) {
		s.logger.Warn("oauth2 redirect for unknown authorization", "state", state)
		s.render(w, http.StatusNotFound, "Authorization failed", "This authorization is unknown or has expired.")
		return
	}

	if q.Get("error") != "" {
		s.render(w, http.StatusOK, "Authorization denied", "The authorization server denied access. You can close this window.")
		return
	}
	s.render(w, http.StatusOK, "Authorization complete", "You can close this window and return to the console.")
}

func (s *Server) render(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, struct{ Title, Message string }{title, message}); err != nil {
		s.logger.Error("rendering callback page", "error", err)
	}
}
