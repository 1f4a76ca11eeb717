package model

type Method struct {
	Method          string
	Description     string
	Headers         Parameters
	QueryParameters Parameters
	Body            []Body
	Responses       []Response
	SecuredBy       []SecurityReference
}

// Body describes one accepted media type of a request body.
type Body struct {
	MediaType      string
	Example        string
	Schema         string
	FormParameters Parameters
}

type Response struct {
	Code        string
	Description string
}

// SecurityReference is one securedBy entry. A zero Name means anonymous
// access; non-nil Parameters mark a parameterized reference such as
// `oauth_2: { scopes: [comments] }`.
type SecurityReference struct {
	Name       string
	Parameters map[string]any
}

// AnonymousAccess is the null securedBy entry.
var AnonymousAccess = SecurityReference{}

func (r SecurityReference) IsAnonymous() bool {
	return r.Name == ""
}

func (r SecurityReference) IsParameterized() bool {
	return r.Parameters != nil
}
