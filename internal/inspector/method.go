package inspector

import (
	"slices"
	"strings"

	"github.com/kolah/apiconsole/internal/model"
	"github.com/kolah/apiconsole/internal/uritemplate"
)

var verbOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE", "CONNECT"}

// Method is a model.Method decorated with its security introspection.
type Method struct {
	model.Method

	securitySchemes map[string]*model.SecurityScheme
	anonymous       bool
}

func newMethod(m *model.Method, schemes map[string]*model.SecurityScheme) *Method {
	method := &Method{Method: *m}
	method.Headers = slices.DeleteFunc(slices.Clone(m.Headers), func(h model.NamedParameter) bool {
		return uritemplate.HasPlaceholder(h.Name)
	})

	method.securitySchemes = make(map[string]*model.SecurityScheme)
	method.anonymous = len(m.SecuredBy) == 0
	for _, ref := range m.SecuredBy {
		if ref.IsAnonymous() {
			method.anonymous = true
			continue
		}
		if ref.IsParameterized() {
			continue
		}
		if scheme, ok := schemes[ref.Name]; ok {
			method.securitySchemes[ref.Name] = scheme
		}
	}
	return method
}

// Verb returns the HTTP method name.
func (m *Method) Verb() string {
	return m.Method.Method
}

// SecuritySchemes returns the plain, declared schemes the method references.
func (m *Method) SecuritySchemes() map[string]*model.SecurityScheme {
	return m.securitySchemes
}

// AllowsAnonymousAccess reports whether securedBy is empty or holds a null
// entry.
func (m *Method) AllowsAnonymousAccess() bool {
	return m.anonymous
}

// NameFromParameterizable returns the scheme name of a securedBy entry,
// plain or parameterized. Anonymous entries have no name.
func NameFromParameterizable(ref model.SecurityReference) string {
	return ref.Name
}

func verbRank(verb string) int {
	if i := slices.Index(verbOrder, strings.ToUpper(verb)); i >= 0 {
		return i
	}
	return len(verbOrder)
}

func sortMethods(methods []*Method) {
	slices.SortStableFunc(methods, func(a, b *Method) int {
		return verbRank(a.Verb()) - verbRank(b.Verb())
	})
}
