package model

type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeInteger ParameterType = "integer"
	TypeNumber  ParameterType = "number"
	TypeBoolean ParameterType = "boolean"
	TypeDate    ParameterType = "date"
	TypeFile    ParameterType = "file"
)

// NamedParameter is a URI, query, header or form parameter definition.
type NamedParameter struct {
	Name        string
	DisplayName string
	Description string
	Type        ParameterType
	Required    bool
	Repeat      bool
	Enum        []string
	Pattern     string
	MinLength   *int
	MaxLength   *int
	Minimum     *float64
	Maximum     *float64
	Example     string
	Default     string
}

type Parameters []NamedParameter

// Lookup returns the parameter named name.
func (p Parameters) Lookup(name string) (*NamedParameter, bool) {
	for i := range p {
		if p[i].Name == name {
			return &p[i], true
		}
	}
	return nil, false
}

const (
	SchemeTypeBasic  = "Basic Authentication"
	SchemeTypeOAuth2 = "OAuth 2.0"
)

// SchemeKind is the authentication strategy a scheme maps to.
type SchemeKind int

const (
	KindUnsupported SchemeKind = iota
	KindAnonymous
	KindBasic
	KindOAuth2
)

func (k SchemeKind) String() string {
	switch k {
	case KindAnonymous:
		return "anonymous"
	case KindBasic:
		return "basic"
	case KindOAuth2:
		return "oauth2"
	default:
		return "unsupported"
	}
}

// KindOf maps a declared scheme type to its strategy kind.
func KindOf(schemeType string) SchemeKind {
	switch schemeType {
	case SchemeTypeBasic:
		return KindBasic
	case SchemeTypeOAuth2:
		return KindOAuth2
	default:
		return KindUnsupported
	}
}

type SecurityScheme struct {
	Name        string
	Type        string
	Kind        SchemeKind
	Description string
	Settings    SecuritySettings
	DescribedBy DescribedBy
}

// SecuritySettings holds OAuth2 endpoints and grants.
type SecuritySettings struct {
	AuthorizationURI    string
	AccessTokenURI      string
	AuthorizationGrants []string
	Scopes              []string
}

// DescribedBy lists the headers and query parameters a scheme uses to
// carry credentials.
type DescribedBy struct {
	Headers         Parameters
	QueryParameters Parameters
}

// AccessTokenInQuery reports whether the scheme delivers its token through
// an access_token query parameter.
func (s *SecurityScheme) AccessTokenInQuery() bool {
	_, ok := s.DescribedBy.QueryParameters.Lookup("access_token")
	return ok
}
