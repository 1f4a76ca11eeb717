// Package inspector turns a parsed document into the navigable model the
// console works with: flattened resources carrying their full path segment
// chain, sorted and decorated methods, and display groups.
package inspector

import (
	"slices"
	"strings"

	"github.com/kolah/apiconsole/internal/client"
	"github.com/kolah/apiconsole/internal/model"
	"github.com/kolah/apiconsole/internal/pathbuilder"
	"github.com/kolah/apiconsole/internal/uritemplate"
)

// API is the inspected document. The input document is left untouched.
type API struct {
	Title             string
	Version           string
	MediaType         string
	BaseURI           *uritemplate.Template
	BaseURIParameters model.Parameters
	SecuritySchemes   []model.SecurityScheme
	Resources         []*Resource
	ResourceGroups    [][]*Resource
}

type Resource struct {
	RelativeURI   string
	DisplayName   string
	Description   string
	URIParameters model.Parameters
	PathSegments  []*uritemplate.Template
	Traits        []string
	ResourceType  string
	Methods       []*Method
}

// Create inspects doc.
func Create(doc *model.Document) *API {
	api := &API{
		Title:             doc.Title,
		Version:           doc.Version,
		MediaType:         doc.MediaType,
		BaseURI:           client.CreateBaseURI(doc),
		BaseURIParameters: doc.BaseURIParameters,
		SecuritySchemes:   slices.Clone(doc.SecuritySchemes),
	}

	schemes := make(map[string]*model.SecurityScheme, len(api.SecuritySchemes))
	for i := range api.SecuritySchemes {
		schemes[api.SecuritySchemes[i].Name] = &api.SecuritySchemes[i]
	}

	api.Resources = extractResources(nil, doc.Resources, schemes, nil)
	api.ResourceGroups = groupResources(api.Resources)
	return api
}

// extractResources walks resources depth-first, pre-order, appending each
// resource's own segment to the parent chain.
func extractResources(parent []*uritemplate.Template, resources []model.Resource, schemes map[string]*model.SecurityScheme, out []*Resource) []*Resource {
	for i := range resources {
		r := &resources[i]

		segments := make([]*uritemplate.Template, 0, len(parent)+1)
		segments = append(segments, parent...)
		segments = append(segments, client.CreatePathSegment(r))

		resource := &Resource{
			RelativeURI:   r.RelativeURI,
			DisplayName:   r.DisplayName,
			Description:   r.Description,
			URIParameters: r.URIParameters,
			PathSegments:  segments,
			Traits:        slices.Clone(r.Is),
			ResourceType:  r.Type,
		}
		for j := range r.Methods {
			resource.Methods = append(resource.Methods, newMethod(&r.Methods[j], schemes))
		}
		sortMethods(resource.Methods)

		out = append(out, resource)
		out = extractResources(segments, r.Resources, schemes, out)
	}
	return out
}

// groupResources starts a new group whenever a resource's top-level segment
// does not begin with the top-level segment that started the current group.
func groupResources(resources []*Resource) [][]*Resource {
	var (
		groups  [][]*Resource
		current []*Resource
		prefix  string
	)
	for _, r := range resources {
		top := r.PathSegments[0].String()
		if current == nil || !strings.HasPrefix(top, prefix) {
			if current != nil {
				groups = append(groups, current)
			}
			current = nil
			prefix = top
		}
		current = append(current, r)
	}
	if current != nil {
		groups = append(groups, current)
	}
	return groups
}

// Path returns the resource's full path template.
func (r *Resource) Path() string {
	var b strings.Builder
	for _, s := range r.PathSegments {
		b.WriteString(s.String())
	}
	return b.String()
}

// PathBuilder renders the resource's segment chain.
func (r *Resource) PathBuilder() pathbuilder.Builder {
	return pathbuilder.Create(r.PathSegments)
}

// Method returns the method for verb, case-insensitively.
func (r *Resource) Method(verb string) *Method {
	for _, m := range r.Methods {
		if strings.EqualFold(m.Verb(), verb) {
			return m
		}
	}
	return nil
}

// Resource returns the resource whose full path template is path.
func (a *API) Resource(path string) *Resource {
	for _, r := range a.Resources {
		if r.Path() == path {
			return r
		}
	}
	return nil
}

// SecurityScheme returns the scheme declared under name, or nil.
func (a *API) SecurityScheme(name string) *model.SecurityScheme {
	for i := range a.SecuritySchemes {
		if a.SecuritySchemes[i].Name == name {
			return &a.SecuritySchemes[i]
		}
	}
	return nil
}
