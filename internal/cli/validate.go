package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolah/apiconsole/internal/console"
	"github.com/kolah/apiconsole/internal/validator"
)

var errInvalidValue = errors.New("invalid value")

func ValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate METHOD PATH PARAM [VALUE]",
		Short: "Check a value against a parameter definition",
		Long: `Check a value against a parameter definition.

The parameter is looked up in the location given by --in: uri, query,
header or form. A missing VALUE is checked as empty.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: runValidate,
	}

	cmd.Flags().String("in", console.InQuery, "Parameter location: uri, query, header, form")
	cmd.Flags().String("media-type", "", "Body media type for form parameters")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	resource, method, err := a.target(args[1], strings.ToLower(args[0]))
	if err != nil {
		return err
	}

	location, _ := cmd.Flags().GetString("in")
	mediaType, _ := cmd.Flags().GetString("media-type")
	in := console.Input{Resource: resource, Method: method, MediaType: mediaType}

	definition, ok := console.Parameters(in, location).Lookup(args[2])
	if !ok {
		return fmt.Errorf("%s parameter %s not defined on %s %s", location, args[2], args[0], args[1])
	}

	v, err := validator.From(definition)
	if err != nil {
		return err
	}

	var value string
	if len(args) == 4 {
		value = args[3]
	}

	result := v.Validate(value)
	fmt.Fprintln(cmd.OutOrStdout(), result.String())
	if !result.Valid() {
		return errInvalidValue
	}
	return nil
}
