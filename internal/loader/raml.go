package loader

import (
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/kolah/apiconsole/internal/model"
	"github.com/kolah/apiconsole/internal/request"
)

var ramlMethods = map[string]bool{
	"get": true, "post": true, "put": true, "patch": true, "delete": true,
	"head": true, "options": true, "trace": true, "connect": true,
}

type ramlReader struct {
	mediaType string
	warnings  []string
}

func (r *ramlReader) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func loadRAML(data []byte, version string) (*Result, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing RAML document: %w", err)
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing RAML document: root is not a mapping")
	}

	r := &ramlReader{}
	doc := r.document(root.Content[0])

	return &Result{
		Document: doc,
		Format:   FormatRAML,
		Version:  version,
		Warnings: r.warnings,
	}, nil
}

// pairs calls fn for each key/value of a mapping node.
func pairs(node *yaml.Node, fn func(key string, value *yaml.Node)) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		fn(node.Content[i].Value, node.Content[i+1])
	}
}

func scalar(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode || isNull(node) {
		return ""
	}
	return node.Value
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func strs(node *yaml.Node) []string {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.ScalarNode {
		if v := scalar(node); v != "" {
			return []string{v}
		}
		return nil
	}
	var out []string
	for _, item := range node.Content {
		if v := scalar(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// refName returns the name of a plain or parameterized reference such as
// `paged` or `paged: { size: 10 }`.
func refName(node *yaml.Node) string {
	if node.Kind == yaml.MappingNode && len(node.Content) > 0 {
		return node.Content[0].Value
	}
	return scalar(node)
}

func refNames(node *yaml.Node) []string {
	if node == nil {
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		if n := refName(node); n != "" {
			return []string{n}
		}
		return nil
	}
	var out []string
	for _, item := range node.Content {
		if n := refName(item); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (r *ramlReader) document(node *yaml.Node) *model.Document {
	doc := &model.Document{}
	var securedBy []model.SecurityReference

	pairs(node, func(key string, value *yaml.Node) {
		switch {
		case key == "title":
			doc.Title = scalar(value)
		case key == "version":
			doc.Version = scalar(value)
		case key == "baseUri":
			doc.BaseURI = scalar(value)
		case key == "mediaType":
			doc.MediaType = scalar(value)
		case key == "baseUriParameters":
			doc.BaseURIParameters = r.parameters(value, true)
		case key == "securitySchemes":
			doc.SecuritySchemes = r.securitySchemes(value)
		case key == "securedBy":
			securedBy = securityReferences(value)
		}
	})
	r.mediaType = doc.MediaType
	doc.BaseURIParameters = withImplicitParameters(doc.BaseURI, doc.BaseURIParameters, "version")

	pairs(node, func(key string, value *yaml.Node) {
		if strings.HasPrefix(key, "/") {
			doc.Resources = append(doc.Resources, r.resource(key, value, securedBy))
		}
	})
	return doc
}

func (r *ramlReader) securitySchemes(node *yaml.Node) []model.SecurityScheme {
	var schemes []model.SecurityScheme
	add := func(name string, value *yaml.Node) {
		schemes = append(schemes, r.securityScheme(name, value))
	}

	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			pairs(item, add)
		}
	case yaml.MappingNode:
		pairs(node, add)
	}
	return schemes
}

func (r *ramlReader) securityScheme(name string, node *yaml.Node) model.SecurityScheme {
	scheme := model.SecurityScheme{Name: name}
	pairs(node, func(key string, value *yaml.Node) {
		switch key {
		case "type":
			scheme.Type = scalar(value)
		case "description":
			scheme.Description = scalar(value)
		case "describedBy":
			pairs(value, func(key string, value *yaml.Node) {
				switch key {
				case "headers":
					scheme.DescribedBy.Headers = r.parameters(value, false)
				case "queryParameters":
					scheme.DescribedBy.QueryParameters = r.parameters(value, false)
				}
			})
		case "settings":
			pairs(value, func(key string, value *yaml.Node) {
				switch key {
				case "authorizationUri":
					scheme.Settings.AuthorizationURI = scalar(value)
				case "accessTokenUri":
					scheme.Settings.AccessTokenURI = scalar(value)
				case "authorizationGrants":
					scheme.Settings.AuthorizationGrants = strs(value)
				case "scopes":
					scheme.Settings.Scopes = strs(value)
				}
			})
		}
	})

	scheme.Kind = model.KindOf(scheme.Type)
	if scheme.Kind == model.KindUnsupported {
		r.warnf("security scheme %s: %s is not supported", name, scheme.Type)
	}
	return scheme
}

// securityReferences reads a securedBy list: null entries, names and
// parameterized names.
func securityReferences(node *yaml.Node) []model.SecurityReference {
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	refs := make([]model.SecurityReference, 0, len(node.Content))
	for _, item := range node.Content {
		switch {
		case isNull(item):
			refs = append(refs, model.AnonymousAccess)
		case item.Kind == yaml.MappingNode && len(item.Content) >= 2:
			params := map[string]any{}
			if err := item.Content[1].Decode(&params); err != nil || params == nil {
				params = map[string]any{}
			}
			refs = append(refs, model.SecurityReference{Name: item.Content[0].Value, Parameters: params})
		default:
			refs = append(refs, model.SecurityReference{Name: scalar(item)})
		}
	}
	return refs
}

func (r *ramlReader) resource(relativeURI string, node *yaml.Node, inherited []model.SecurityReference) model.Resource {
	res := model.Resource{RelativeURI: relativeURI}

	securedBy := inherited
	pairs(node, func(key string, value *yaml.Node) {
		if key == "securedBy" {
			securedBy = securityReferences(value)
		}
	})

	pairs(node, func(key string, value *yaml.Node) {
		switch {
		case key == "displayName":
			res.DisplayName = scalar(value)
		case key == "description":
			res.Description = scalar(value)
		case key == "uriParameters":
			res.URIParameters = r.parameters(value, true)
		case key == "is":
			res.Is = refNames(value)
		case key == "type":
			res.Type = refName(value)
		case ramlMethods[key]:
			res.Methods = append(res.Methods, r.method(key, value, securedBy))
		case strings.HasPrefix(key, "/"):
			res.Resources = append(res.Resources, r.resource(key, value, securedBy))
		}
	})

	res.URIParameters = withImplicitParameters(relativeURI, res.URIParameters)
	return res
}

func (r *ramlReader) method(verb string, node *yaml.Node, inherited []model.SecurityReference) model.Method {
	m := model.Method{Method: verb, SecuredBy: inherited}

	pairs(node, func(key string, value *yaml.Node) {
		switch key {
		case "description":
			m.Description = scalar(value)
		case "headers":
			m.Headers = r.parameters(value, false)
		case "queryParameters":
			m.QueryParameters = r.parameters(value, false)
		case "body":
			m.Body = r.bodies(value)
		case "responses":
			pairs(value, func(code string, value *yaml.Node) {
				resp := model.Response{Code: code}
				pairs(value, func(key string, value *yaml.Node) {
					if key == "description" {
						resp.Description = scalar(value)
					}
				})
				m.Responses = append(m.Responses, resp)
			})
		case "securedBy":
			m.SecuredBy = securityReferences(value)
		}
	})
	return m
}

var bodyKeys = map[string]bool{"schema": true, "example": true, "formParameters": true}

func (r *ramlReader) bodies(node *yaml.Node) []model.Body {
	var bodies []model.Body
	implicit := false
	pairs(node, func(key string, _ *yaml.Node) {
		implicit = implicit || bodyKeys[key]
	})
	if implicit {
		return []model.Body{r.body(r.mediaType, node)}
	}

	pairs(node, func(mediaType string, value *yaml.Node) {
		bodies = append(bodies, r.body(mediaType, value))
	})
	return bodies
}

func (r *ramlReader) body(mediaType string, node *yaml.Node) model.Body {
	body := model.Body{MediaType: mediaType}
	pairs(node, func(key string, value *yaml.Node) {
		switch key {
		case "example":
			body.Example = exampleString(value)
		case "schema":
			body.Schema = scalar(value)
		case "formParameters":
			body.FormParameters = r.parameters(value, false)
		}
	})
	if body.FormParameters != nil && mediaType != request.FormURLEncoded && mediaType != request.FormData {
		r.warnf("body %s: formParameters are only used with form media types", mediaType)
	}
	return body
}

// parameters reads named parameters. URI parameters are required unless
// declared otherwise.
func (r *ramlReader) parameters(node *yaml.Node, requiredByDefault bool) model.Parameters {
	var params model.Parameters
	pairs(node, func(key string, value *yaml.Node) {
		// a list of alternatives uses its first definition
		if value.Kind == yaml.SequenceNode && len(value.Content) > 0 {
			value = value.Content[0]
		}
		params = append(params, r.parameter(key, value, requiredByDefault))
	})
	return params
}

func (r *ramlReader) parameter(paramName string, node *yaml.Node, requiredByDefault bool) model.NamedParameter {
	p := model.NamedParameter{Name: paramName, Type: model.TypeString, Required: requiredByDefault}

	pairs(node, func(key string, value *yaml.Node) {
		switch key {
		case "displayName":
			p.DisplayName = scalar(value)
		case "description":
			p.Description = scalar(value)
		case "type":
			p.Type = model.ParameterType(scalar(value))
		case "required":
			p.Required = scalar(value) == "true"
		case "repeat":
			p.Repeat = scalar(value) == "true"
		case "enum":
			p.Enum = strs(value)
		case "pattern":
			p.Pattern = scalar(value)
		case "example":
			p.Example = scalar(value)
		case "default":
			p.Default = scalar(value)
		case "minLength":
			p.MinLength = r.intValue(paramName, key, value)
		case "maxLength":
			p.MaxLength = r.intValue(paramName, key, value)
		case "minimum":
			p.Minimum = r.floatValue(paramName, key, value)
		case "maximum":
			p.Maximum = r.floatValue(paramName, key, value)
		}
	})
	return p
}

func (r *ramlReader) intValue(param, key string, node *yaml.Node) *int {
	v, err := strconv.Atoi(scalar(node))
	if err != nil {
		r.warnf("parameter %s: invalid %s %q", param, key, scalar(node))
		return nil
	}
	return &v
}

func (r *ramlReader) floatValue(param, key string, node *yaml.Node) *float64 {
	v, err := strconv.ParseFloat(scalar(node), 64)
	if err != nil {
		r.warnf("parameter %s: invalid %s %q", param, key, scalar(node))
		return nil
	}
	return &v
}
