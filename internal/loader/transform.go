package loader

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/apiconsole/internal/model"
	"github.com/kolah/apiconsole/internal/request"
	"github.com/kolah/apiconsole/internal/uritemplate"
)

type transformer struct {
	warnings []string
}

func (t *transformer) warnf(format string, args ...any) {
	t.warnings = append(t.warnings, fmt.Sprintf(format, args...))
}

// transform maps an OpenAPI 3 model onto the console document. Paths are
// split into a resource tree, one resource per path segment.
func (t *transformer) transform(doc *v3.Document) *model.Document {
	document := &model.Document{}

	if doc.Info != nil {
		document.Title = doc.Info.Title
		document.Version = doc.Info.Version
	}

	if len(doc.Servers) > 0 {
		server := doc.Servers[0]
		document.BaseURI = strings.TrimSuffix(server.URL, "/")
		if server.Variables != nil {
			for name, variable := range server.Variables.FromOldest() {
				if name == "version" {
					document.Version = variable.Default
					continue
				}
				document.BaseURIParameters = append(document.BaseURIParameters, model.NamedParameter{
					Name:        name,
					Description: variable.Description,
					Type:        model.TypeString,
					Enum:        variable.Enum,
					Default:     variable.Default,
				})
			}
		}
		if len(doc.Servers) > 1 {
			t.warnf("%d servers declared, using %s", len(doc.Servers), server.URL)
		}
	}
	document.BaseURIParameters = withImplicitParameters(document.BaseURI, document.BaseURIParameters, "version")

	if doc.Components != nil && doc.Components.SecuritySchemes != nil {
		for name, scheme := range doc.Components.SecuritySchemes.FromOldest() {
			document.SecuritySchemes = append(document.SecuritySchemes, t.transformSecurityScheme(name, scheme))
		}
	}

	defaultSecurity := transformSecurity(doc.Security)

	tree := &resourceNode{}
	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for path, item := range doc.Paths.PathItems.FromOldest() {
			t.addPath(tree, path, item, defaultSecurity)
		}
	}
	document.Resources = tree.resources()

	return document
}

// resourceNode builds the resource tree before it is frozen into values.
type resourceNode struct {
	resource model.Resource
	children []*resourceNode
}

func (n *resourceNode) child(relativeURI string) *resourceNode {
	for _, c := range n.children {
		if c.resource.RelativeURI == relativeURI {
			return c
		}
	}
	c := &resourceNode{resource: model.Resource{RelativeURI: relativeURI}}
	n.children = append(n.children, c)
	return c
}

func (n *resourceNode) resources() []model.Resource {
	var out []model.Resource
	for _, c := range n.children {
		r := c.resource
		r.Resources = c.resources()
		out = append(out, r)
	}
	return out
}

// splitPath returns the segments of path, each with its leading slash.
func splitPath(path string) []string {
	var segments []string
	for part := range strings.SplitSeq(strings.Trim(path, "/"), "/") {
		if part != "" {
			segments = append(segments, "/"+part)
		}
	}
	if len(segments) == 0 {
		segments = []string{"/"}
	}
	return segments
}

func (t *transformer) addPath(tree *resourceNode, path string, item *v3.PathItem, defaultSecurity []model.SecurityReference) {
	pathParams := map[string]*v3.Parameter{}
	for _, p := range item.Parameters {
		if p.In == "path" {
			pathParams[p.Name] = p
		}
	}
	for _, m := range operations(item) {
		for _, p := range m.op.Parameters {
			if p.In == "path" {
				pathParams[p.Name] = p
			}
		}
	}

	node := tree
	for _, segment := range splitPath(path) {
		node = node.child(segment)
		for _, name := range uritemplate.New(segment, nil).Placeholders() {
			if _, exists := node.resource.URIParameters.Lookup(name); exists {
				continue
			}
			param := model.NamedParameter{Name: name, Type: model.TypeString, Required: true}
			if p, ok := pathParams[name]; ok {
				param = t.transformParameter(p)
				param.Required = true
			}
			node.resource.URIParameters = append(node.resource.URIParameters, param)
		}
	}

	if item.Summary != "" {
		node.resource.DisplayName = item.Summary
	}
	if item.Description != "" {
		node.resource.Description = item.Description
	}

	for _, m := range operations(item) {
		node.resource.Methods = append(node.resource.Methods, t.transformOperation(m.method, item, m.op, defaultSecurity))
	}
}

type operation struct {
	method string
	op     *v3.Operation
}

func operations(item *v3.PathItem) []operation {
	all := []operation{
		{http.MethodGet, item.Get},
		{http.MethodPost, item.Post},
		{http.MethodPut, item.Put},
		{http.MethodPatch, item.Patch},
		{http.MethodDelete, item.Delete},
		{http.MethodHead, item.Head},
		{http.MethodOptions, item.Options},
		{http.MethodTrace, item.Trace},
	}
	return slices.DeleteFunc(all, func(o operation) bool { return o.op == nil })
}

func (t *transformer) transformOperation(method string, item *v3.PathItem, op *v3.Operation, defaultSecurity []model.SecurityReference) model.Method {
	m := model.Method{
		Method:      strings.ToLower(method),
		Description: op.Description,
	}
	if m.Description == "" {
		m.Description = op.Summary
	}

	for _, p := range slices.Concat(item.Parameters, op.Parameters) {
		switch p.In {
		case "query":
			m.QueryParameters = appendOrReplace(m.QueryParameters, t.transformParameter(p))
		case "header":
			m.Headers = appendOrReplace(m.Headers, t.transformParameter(p))
		case "path":
		default:
			t.warnf("%s: %s parameter %s is not supported", method, p.In, p.Name)
		}
	}

	if op.RequestBody != nil && op.RequestBody.Content != nil {
		for mediaType, content := range op.RequestBody.Content.FromOldest() {
			m.Body = append(m.Body, t.transformBody(mediaType, content))
		}
	}

	if op.Responses != nil && op.Responses.Codes != nil {
		for code, resp := range op.Responses.Codes.FromOldest() {
			m.Responses = append(m.Responses, model.Response{Code: code, Description: resp.Description})
		}
	}

	if op.Security != nil {
		m.SecuredBy = transformSecurity(op.Security)
	} else {
		m.SecuredBy = defaultSecurity
	}

	return m
}

func appendOrReplace(params model.Parameters, p model.NamedParameter) model.Parameters {
	for i := range params {
		if params[i].Name == p.Name {
			params[i] = p
			return params
		}
	}
	return append(params, p)
}

func (t *transformer) transformBody(mediaType string, content *v3.MediaType) model.Body {
	body := model.Body{
		MediaType: mediaType,
		Example:   exampleString(content.Example),
	}
	if body.Example == "" && content.Examples != nil {
		for _, ex := range content.Examples.FromOldest() {
			if ex != nil && ex.Value != nil {
				body.Example = exampleString(ex.Value)
				break
			}
		}
	}

	if content.Schema == nil {
		return body
	}
	body.Schema = content.Schema.GetReference()

	if mediaType != request.FormURLEncoded && mediaType != request.FormData {
		return body
	}

	schema := content.Schema.Schema()
	if schema == nil || schema.Properties == nil {
		return body
	}
	for name, prop := range schema.Properties.FromOldest() {
		param := parameterFromSchema(name, prop.Schema())
		param.Required = slices.Contains(schema.Required, name)
		body.FormParameters = append(body.FormParameters, param)
	}
	return body
}

func (t *transformer) transformParameter(p *v3.Parameter) model.NamedParameter {
	var schema *base.Schema
	if p.Schema != nil {
		schema = p.Schema.Schema()
	}

	param := parameterFromSchema(p.Name, schema)
	param.Description = p.Description
	param.Required = boolPtr(p.Required)
	if ex := exampleString(p.Example); ex != "" {
		param.Example = ex
	}
	return param
}

func parameterFromSchema(name string, s *base.Schema) model.NamedParameter {
	param := model.NamedParameter{Name: name, Type: model.TypeString}
	if s == nil {
		return param
	}

	param.Description = s.Description
	param.Pattern = s.Pattern
	param.Example = exampleString(s.Example)
	param.Default = exampleString(s.Default)

	if len(s.Type) > 0 {
		param.Type = parameterType(s.Type[0], s.Format)
	}
	if param.Type == model.TypeString || param.Type == "" {
		for _, e := range s.Enum {
			param.Enum = append(param.Enum, e.Value)
		}
	}

	if s.Minimum != nil {
		v := float64(*s.Minimum)
		param.Minimum = &v
	}
	if s.Maximum != nil {
		v := float64(*s.Maximum)
		param.Maximum = &v
	}
	if s.MinLength != nil {
		v := int(*s.MinLength)
		param.MinLength = &v
	}
	if s.MaxLength != nil {
		v := int(*s.MaxLength)
		param.MaxLength = &v
	}
	return param
}

func parameterType(schemaType, format string) model.ParameterType {
	switch schemaType {
	case "integer":
		return model.TypeInteger
	case "number":
		return model.TypeNumber
	case "boolean":
		return model.TypeBoolean
	case "string":
		if format == "binary" {
			return model.TypeFile
		}
		return model.TypeString
	case "file":
		return model.TypeFile
	default:
		return model.TypeString
	}
}

// transformSecurity maps requirements to securedBy entries. An empty
// requirement allows anonymous access; scopes make a parameterized entry.
func transformSecurity(requirements []*base.SecurityRequirement) []model.SecurityReference {
	var refs []model.SecurityReference
	for _, req := range requirements {
		if req == nil || req.Requirements == nil || req.Requirements.Len() == 0 {
			refs = append(refs, model.AnonymousAccess)
			continue
		}
		for name, scopes := range req.Requirements.FromOldest() {
			ref := model.SecurityReference{Name: name}
			if len(scopes) > 0 {
				values := make([]any, len(scopes))
				for i, s := range scopes {
					values[i] = s
				}
				ref.Parameters = map[string]any{"scopes": values}
			}
			refs = append(refs, ref)
		}
	}
	return refs
}

func (t *transformer) transformSecurityScheme(name string, scheme *v3.SecurityScheme) model.SecurityScheme {
	ss := model.SecurityScheme{
		Name:        name,
		Type:        scheme.Type,
		Description: scheme.Description,
	}

	switch {
	case scheme.Type == "http" && strings.EqualFold(scheme.Scheme, "basic"):
		ss.Type = model.SchemeTypeBasic
	case scheme.Type == "oauth2" && scheme.Flows != nil && scheme.Flows.AuthorizationCode != nil:
		flow := scheme.Flows.AuthorizationCode
		ss.Type = model.SchemeTypeOAuth2
		ss.Settings = model.SecuritySettings{
			AuthorizationURI:    flow.AuthorizationUrl,
			AccessTokenURI:      flow.TokenUrl,
			AuthorizationGrants: []string{"code"},
			Scopes:              scopeNames(flow.Scopes),
		}
		ss.DescribedBy.Headers = model.Parameters{{Name: "Authorization", Type: model.TypeString}}
	case scheme.Type == "http":
		ss.Type = "http " + strings.ToLower(scheme.Scheme)
		t.warnf("security scheme %s: http %s is not supported", name, scheme.Scheme)
	case scheme.Type == "apiKey":
		param := model.Parameters{{Name: scheme.Name, Type: model.TypeString}}
		switch scheme.In {
		case "query":
			ss.DescribedBy.QueryParameters = param
		case "header":
			ss.DescribedBy.Headers = param
		}
		t.warnf("security scheme %s: apiKey is not supported", name)
	default:
		t.warnf("security scheme %s: %s is not supported", name, scheme.Type)
	}

	ss.Kind = model.KindOf(ss.Type)
	return ss
}

func scopeNames(scopes *orderedmap.Map[string, string]) []string {
	if scopes == nil {
		return nil
	}
	var names []string
	for scope := range scopes.FromOldest() {
		names = append(names, scope)
	}
	return names
}

// withImplicitParameters declares every placeholder of template that has no
// definition as a required string, except the reserved names.
func withImplicitParameters(template string, params model.Parameters, reserved ...string) model.Parameters {
	for _, name := range uritemplate.New(template, nil).Placeholders() {
		if slices.Contains(reserved, name) {
			continue
		}
		if _, ok := params.Lookup(name); !ok {
			params = append(params, model.NamedParameter{Name: name, Type: model.TypeString, Required: true})
		}
	}
	return params
}

// exampleString renders an example node: scalars as their value, anything
// else as indented JSON.
func exampleString(node *yaml.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind == yaml.ScalarNode {
		if node.ShortTag() == "!!null" {
			return ""
		}
		return node.Value
	}

	var v any
	if err := node.Decode(&v); err != nil {
		return ""
	}
	out, err := json.MarshalIndent(normalize(v), "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

// normalize converts YAML maps with non-string keys into JSON-compatible
// maps.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, val := range v {
			v[k] = normalize(val)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[keyString(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range v {
			v[i] = normalize(val)
		}
		return v
	default:
		return v
	}
}

func keyString(k any) string {
	switch k := k.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	default:
		return fmt.Sprint(k)
	}
}

func boolPtr(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
