// Package client renders the base URI of a document with user-supplied base
// URI parameter values.
package client

import (
	"maps"

	"github.com/kolah/apiconsole/internal/model"
	"github.com/kolah/apiconsole/internal/uritemplate"
)

// Configuration collects overrides applied before the first render.
type Configuration struct {
	baseURIParameters map[string]string
}

// BaseURIParameters replaces the base URI parameter values. The document
// version is always kept under "version".
func (c *Configuration) BaseURIParameters(values map[string]string) {
	version := c.baseURIParameters["version"]
	c.baseURIParameters = maps.Clone(values)
	if c.baseURIParameters == nil {
		c.baseURIParameters = map[string]string{}
	}
	c.baseURIParameters["version"] = version
}

type Client struct {
	doc    *model.Document
	config Configuration
}

// Create returns a client for doc. configure, when non-nil, runs before the
// client is returned.
func Create(doc *model.Document, configure func(*Configuration)) *Client {
	c := &Client{
		doc: doc,
		config: Configuration{
			baseURIParameters: map[string]string{"version": doc.Version},
		},
	}
	if configure != nil {
		configure(&c.config)
	}
	return c
}

// BaseURI renders the base URI. The template is rebuilt on every call.
func (c *Client) BaseURI() (string, error) {
	tmpl := uritemplate.New(c.doc.BaseURI, c.doc.BaseURIParameters)
	return tmpl.Render(c.config.baseURIParameters)
}

// CreateBaseURI returns the document's base URI template with the version
// placeholder resolved.
func CreateBaseURI(doc *model.Document) *uritemplate.Template {
	return uritemplate.New(doc.BaseURI, doc.BaseURIParameters,
		uritemplate.WithParameterValues(map[string]string{"version": doc.Version}))
}

// CreatePathSegment returns the template for a resource's own relative URI.
func CreatePathSegment(resource *model.Resource) *uritemplate.Template {
	return uritemplate.New(resource.RelativeURI, resource.URIParameters)
}
