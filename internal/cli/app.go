package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kolah/apiconsole/internal/config"
	"github.com/kolah/apiconsole/internal/inspector"
	"github.com/kolah/apiconsole/internal/loader"
	"github.com/kolah/apiconsole/internal/logging"
	"github.com/kolah/apiconsole/internal/model"
)

// app is what every command needs: configuration, a logger and the loaded
// description.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	doc    *model.Document
	api    *inspector.API
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	result, err := loader.LoadFile(cfg.Document)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.Document, err)
	}
	for _, w := range result.Warnings {
		logger.Warn(w, "document", cfg.Document)
	}
	logger.Debug("document loaded", "document", cfg.Document, "format", result.Format, "version", result.Version)

	return &app{
		cfg:    cfg,
		logger: logger,
		doc:    result.Document,
		api:    inspector.Create(result.Document),
	}, nil
}

// target finds the method verb of the resource at path.
func (a *app) target(path, verb string) (*inspector.Resource, *inspector.Method, error) {
	resource := a.api.Resource(path)
	if resource == nil {
		return nil, nil, fmt.Errorf("resource %s not found", path)
	}
	method := resource.Method(verb)
	if method == nil {
		return nil, nil, fmt.Errorf("method %s not defined on %s", verb, path)
	}
	return resource, method, nil
}
