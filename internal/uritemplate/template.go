// Package uritemplate implements the `{name}` placeholder templates used for
// base URIs and resource path segments.
package uritemplate

import (
	"errors"
	"regexp"

	"github.com/kolah/apiconsole/internal/model"
)

var placeholder = regexp.MustCompile(`\{([^}]*)\}`)

// ErrMissingRequiredParameter is matched by every MissingParameterError.
var ErrMissingRequiredParameter = errors.New("missing required uri parameter")

// MissingParameterError reports a required parameter absent from the render
// context.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return "missing required uri parameter: " + e.Name
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingRequiredParameter
}

// Token is a fragment of a template: literal text or a placeholder name.
type Token struct {
	Text        string
	Placeholder bool
}

type Option func(*options)

type options struct {
	parameterValues map[string]string
}

// WithParameterValues resolves the given placeholders into the template text
// at construction time. Empty values leave the placeholder in place.
func WithParameterValues(values map[string]string) Option {
	return func(o *options) {
		o.parameterValues = values
	}
}

type Template struct {
	template   string
	tokens     []Token
	parameters model.Parameters
	required   []string
}

func New(template string, parameters model.Parameters, opts ...Option) *Template {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(o.parameterValues) > 0 {
		template = placeholder.ReplaceAllStringFunc(template, func(match string) string {
			if v := o.parameterValues[match[1:len(match)-1]]; v != "" {
				return v
			}
			return match
		})
	}

	t := &Template{
		template:   template,
		tokens:     tokenize(template),
		parameters: parameters,
	}
	for _, p := range parameters {
		if p.Required {
			t.required = append(t.required, p.Name)
		}
	}
	return t
}

func tokenize(template string) []Token {
	var tokens []Token
	last := 0
	for _, loc := range placeholder.FindAllStringSubmatchIndex(template, -1) {
		if lit := template[last:loc[0]]; lit != "" {
			tokens = append(tokens, Token{Text: lit})
		}
		if name := template[loc[2]:loc[3]]; name != "" {
			tokens = append(tokens, Token{Text: name, Placeholder: true})
		}
		last = loc[1]
	}
	if lit := template[last:]; lit != "" {
		tokens = append(tokens, Token{Text: lit})
	}
	return tokens
}

// Tokens returns the literal and placeholder fragments in order.
func (t *Template) Tokens() []Token {
	return t.tokens
}

// Parameters returns the parameter definitions the template was built with.
func (t *Template) Parameters() model.Parameters {
	return t.parameters
}

// Render substitutes every placeholder with its context value. All required
// parameters are checked before any substitution takes place.
func (t *Template) Render(context map[string]string) (string, error) {
	for _, name := range t.required {
		if context[name] == "" {
			return "", &MissingParameterError{Name: name}
		}
	}

	return placeholder.ReplaceAllStringFunc(t.template, func(match string) string {
		return context[match[1:len(match)-1]]
	}), nil
}

func (t *Template) String() string {
	return t.template
}

// Placeholders returns the placeholder names in template order.
func (t *Template) Placeholders() []string {
	var names []string
	for _, tok := range t.tokens {
		if tok.Placeholder {
			names = append(names, tok.Text)
		}
	}
	return names
}

// HasPlaceholder reports whether s contains a `{...}` placeholder.
func HasPlaceholder(s string) bool {
	return placeholder.MatchString(s)
}
