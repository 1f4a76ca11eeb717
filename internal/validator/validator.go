// Package validator checks single user-entered values against a named
// parameter definition.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kolah/apiconsole/internal/model"
)

// Number grammars follow the YAML 1.2 core schema.
var (
	integerPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	numberPattern  = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]*)?([eE][-+]?[0-9]+)?$`)
	rfc1123Pattern = regexp.MustCompile(`^(Mon|Tue|Wed|Thu|Fri|Sat|Sun), \d{2} (Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{4} \d{2}:\d{2}:\d{2} GMT$`)
)

// Rule names reported in a Result.
const (
	RuleRequired  = "required"
	RuleEnum      = "enum"
	RuleInteger   = "integer"
	RuleNumber    = "number"
	RuleBoolean   = "boolean"
	RuleMinimum   = "minimum"
	RuleMaximum   = "maximum"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
	RuleDate      = "date"
)

var ErrNoDefinition = errors.New("definition is required")

type rule struct {
	name  string
	check func(value string) bool
}

type Validator struct {
	rules []rule
}

// Result is the outcome of Validate: valid, or the failed rule names in
// registration order.
type Result struct {
	failed []string
}

func (r Result) Valid() bool {
	return len(r.failed) == 0
}

// Errors returns the failed rule names, or nil for a valid result.
func (r Result) Errors() []string {
	return r.failed
}

func (r Result) String() string {
	if r.Valid() {
		return "valid"
	}
	return "invalid: " + strings.Join(r.failed, ", ")
}

// From builds the rule set for definition based on its type. Types without
// rules produce a validator that accepts everything.
func From(definition *model.NamedParameter) (*Validator, error) {
	if definition == nil {
		return nil, ErrNoDefinition
	}

	v := &Validator{}
	if definition.Required {
		v.add(RuleRequired, required)
	}

	switch definition.Type {
	case model.TypeString, "":
		if definition.Enum != nil {
			v.add(RuleEnum, enum(definition.Enum))
		}
		if definition.MinLength != nil {
			v.add(RuleMinLength, minLength(*definition.MinLength))
		}
		if definition.MaxLength != nil {
			v.add(RuleMaxLength, maxLength(*definition.MaxLength))
		}
		if definition.Pattern != "" {
			re, err := regexp.Compile(definition.Pattern)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern for %s: %w", definition.Name, err)
			}
			v.add(RulePattern, matches(re))
		}
	case model.TypeInteger:
		v.add(RuleInteger, matches(integerPattern))
		v.addBounds(definition)
	case model.TypeNumber:
		v.add(RuleNumber, matches(numberPattern))
		v.addBounds(definition)
	case model.TypeBoolean:
		v.add(RuleBoolean, boolean)
	case model.TypeDate:
		v.add(RuleDate, matches(rfc1123Pattern))
	default:
		return &Validator{}, nil
	}

	return v, nil
}

// Validate runs every rule against value.
func (v *Validator) Validate(value string) Result {
	var failed []string
	for _, r := range v.rules {
		if !r.check(value) {
			failed = append(failed, r.name)
		}
	}
	return Result{failed: failed}
}

// Rules returns the active rule names in registration order.
func (v *Validator) Rules() []string {
	names := make([]string, len(v.rules))
	for i, r := range v.rules {
		names[i] = r.name
	}
	return names
}

func (v *Validator) add(name string, check func(string) bool) {
	v.rules = append(v.rules, rule{name: name, check: check})
}

// addBounds registers minimum and maximum. A zero bound is enforced.
func (v *Validator) addBounds(definition *model.NamedParameter) {
	if definition.Minimum != nil {
		v.add(RuleMinimum, minimum(*definition.Minimum))
	}
	if definition.Maximum != nil {
		v.add(RuleMaximum, maximum(*definition.Maximum))
	}
}

func required(value string) bool {
	return value != ""
}

func boolean(value string) bool {
	return value == "" || value == "true" || value == "false"
}

func matches(re *regexp.Regexp) func(string) bool {
	return func(value string) bool {
		return value == "" || re.MatchString(value)
	}
}

func enum(values []string) func(string) bool {
	return func(value string) bool {
		return value == "" || slices.Contains(values, value)
	}
}

func minimum(bound float64) func(string) bool {
	return func(value string) bool {
		if value == "" {
			return true
		}
		n, ok := parseNumber(value)
		return ok && n >= bound
	}
}

func maximum(bound float64) func(string) bool {
	return func(value string) bool {
		if value == "" {
			return true
		}
		n, ok := parseNumber(value)
		return ok && n <= bound
	}
}

func minLength(bound int) func(string) bool {
	return func(value string) bool {
		return value == "" || utf8.RuneCountInString(value) >= bound
	}
}

func maxLength(bound int) func(string) bool {
	return func(value string) bool {
		return value == "" || utf8.RuneCountInString(value) <= bound
	}
}

func parseNumber(value string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
