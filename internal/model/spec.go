package model

// Document is a parsed API description, independent of its source format.
type Document struct {
	Title             string
	Version           string
	BaseURI           string
	BaseURIParameters Parameters
	MediaType         string
	SecuritySchemes   []SecurityScheme
	Resources         []Resource
}

// SecurityScheme returns the scheme declared under name, or nil.
func (d *Document) SecurityScheme(name string) *SecurityScheme {
	for i := range d.SecuritySchemes {
		if d.SecuritySchemes[i].Name == name {
			return &d.SecuritySchemes[i]
		}
	}
	return nil
}

// Resource is a node of the path hierarchy.
type Resource struct {
	RelativeURI   string
	DisplayName   string
	Description   string
	URIParameters Parameters
	Is            []string
	Type          string
	Methods       []Method
	Resources     []Resource
}
