package console

import (
	"fmt"
	"slices"

	"github.com/kolah/apiconsole/internal/model"
	"github.com/kolah/apiconsole/internal/validator"
)

// Parameter locations.
const (
	InURI    = "uri"
	InQuery  = "query"
	InHeader = "header"
	InForm   = "form"
)

// FieldError is a parameter whose entered value failed validation.
type FieldError struct {
	In     string
	Name   string
	Errors []string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s parameter %s: %v", e.In, e.Name, e.Errors)
}

// Parameters returns the definitions of in for the input's resource and
// method.
func Parameters(in Input, location string) model.Parameters {
	switch location {
	case InURI:
		var params model.Parameters
		for _, segment := range in.Resource.PathSegments {
			params = append(params, segment.Parameters()...)
		}
		return params
	case InQuery:
		return in.Method.QueryParameters
	case InHeader:
		return in.Method.Headers
	case InForm:
		mediaType := NewBodyOptions(in.Method).MediaType
		if in.MediaType != "" {
			mediaType = in.MediaType
		}
		for _, body := range in.Method.Body {
			if body.MediaType == mediaType {
				return body.FormParameters
			}
		}
	}
	return nil
}

// Validate checks every defined URI, query, header and form parameter
// against the entered values.
func Validate(in Input) ([]FieldError, error) {
	values := map[string]map[string]string{
		InURI:    in.URIParameters,
		InQuery:  in.QueryParameters,
		InHeader: in.Headers,
		InForm:   in.FormParameters,
	}

	var failed []FieldError
	for _, location := range []string{InURI, InQuery, InHeader, InForm} {
		for _, param := range Parameters(in, location) {
			v, err := validator.From(&param)
			if err != nil {
				return nil, fmt.Errorf("%s parameter %s: %w", location, param.Name, err)
			}
			if result := v.Validate(values[location][param.Name]); !result.Valid() {
				failed = append(failed, FieldError{In: location, Name: param.Name, Errors: slices.Clone(result.Errors())})
			}
		}
	}
	return failed, nil
}
