package cli

import (
	"github.com/spf13/cobra"

	"github.com/kolah/apiconsole/internal/config"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "apiconsole",
		Short:   "Inspect an API description and try its methods",
		Version: "1.0.0",

		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	config.BindCommonFlags(root)
	root.AddCommand(
		InspectCommand(),
		TryCommand(),
		ValidateCommand(),
	)

	return root
}
