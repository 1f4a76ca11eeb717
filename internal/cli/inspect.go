package cli

import (
	"github.com/spf13/cobra"

	"github.com/kolah/apiconsole/internal/templates"
)

func InspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the resources, methods and security schemes of the document",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}
}

func runInspect(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	engine, err := templates.New(a.cfg.Templates.Dir)
	if err != nil {
		return err
	}
	return engine.Render(cmd.OutOrStdout(), templates.Outline, a.api)
}
