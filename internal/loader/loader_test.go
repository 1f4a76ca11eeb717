package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/apiconsole/internal/model"
)

const ramlDocument = `#%RAML 0.8
title: Example API
version: v1
baseUri: https://{host}.example.com/{version}
mediaType: application/json
baseUriParameters:
  host:
    type: string
    enum: [api, sandbox]
securitySchemes:
  - basic:
      type: Basic Authentication
  - oauth_2_0:
      type: OAuth 2.0
      describedBy:
        queryParameters:
          access_token:
            type: string
      settings:
        authorizationUri: https://auth.example.com/authorize
        accessTokenUri: https://auth.example.com/token
        authorizationGrants: [code]
        scopes: [comments]
  - custom:
      type: x-custom
securedBy: [null, basic]
/users:
  displayName: Users
  is: [paged, { searchable: { key: name } }]
  type: collection
  get:
    queryParameters:
      page:
        type: integer
        minimum: 1
    headers:
      X-Tracker:
        type: string
      X-Dept-{*}:
        type: string
  post:
    securedBy: [oauth_2_0: { scopes: [comments] }, basic]
    body:
      application/x-www-form-urlencoded:
        formParameters:
          name:
            required: true
      application/json:
        example: |
          {"name": "fido"}
    responses:
      201:
        description: Created
  /{id}:
    uriParameters:
      id:
        type: integer
    delete:
      securedBy: [basic]
    put:
      body:
        example: '{"name": "rex"}'
/status:
  securedBy: [oauth_2_0]
  get:
`

func TestLoadRAML(t *testing.T) {
	result, err := Load([]byte(ramlDocument), "")
	require.NoError(t, err)
	require.Equal(t, FormatRAML, result.Format)
	require.Equal(t, "0.8", result.Version)
	require.Contains(t, result.Warnings, "security scheme custom: x-custom is not supported")

	doc := result.Document
	require.Equal(t, "Example API", doc.Title)
	require.Equal(t, "v1", doc.Version)
	require.Equal(t, "https://{host}.example.com/{version}", doc.BaseURI)
	require.Equal(t, "application/json", doc.MediaType)

	host, ok := doc.BaseURIParameters.Lookup("host")
	require.True(t, ok)
	require.True(t, host.Required)
	require.Equal(t, []string{"api", "sandbox"}, host.Enum)
	_, ok = doc.BaseURIParameters.Lookup("version")
	require.False(t, ok)

	require.Len(t, doc.SecuritySchemes, 3)
	oauth := doc.SecurityScheme("oauth_2_0")
	require.Equal(t, model.KindOAuth2, oauth.Kind)
	require.Equal(t, "https://auth.example.com/token", oauth.Settings.AccessTokenURI)
	require.True(t, oauth.AccessTokenInQuery())
	require.Equal(t, model.KindBasic, doc.SecurityScheme("basic").Kind)
	require.Equal(t, model.KindUnsupported, doc.SecurityScheme("custom").Kind)

	require.Len(t, doc.Resources, 2)
	users := doc.Resources[0]
	require.Equal(t, "/users", users.RelativeURI)
	require.Equal(t, "Users", users.DisplayName)
	require.Equal(t, []string{"paged", "searchable"}, users.Is)
	require.Equal(t, "collection", users.Type)

	require.Len(t, users.Methods, 2)
	get := users.Methods[0]
	require.Equal(t, "get", get.Method)
	require.Equal(t, []model.SecurityReference{model.AnonymousAccess, {Name: "basic"}}, get.SecuredBy)
	page, ok := get.QueryParameters.Lookup("page")
	require.True(t, ok)
	require.Equal(t, model.TypeInteger, page.Type)
	require.False(t, page.Required)
	require.Equal(t, 1.0, *page.Minimum)
	require.Len(t, get.Headers, 2)

	post := users.Methods[1]
	require.Len(t, post.SecuredBy, 2)
	require.Equal(t, "oauth_2_0", post.SecuredBy[0].Name)
	require.True(t, post.SecuredBy[0].IsParameterized())
	require.Equal(t, map[string]any{"scopes": []any{"comments"}}, post.SecuredBy[0].Parameters)
	require.Len(t, post.Body, 2)
	require.Equal(t, "application/x-www-form-urlencoded", post.Body[0].MediaType)
	name, ok := post.Body[0].FormParameters.Lookup("name")
	require.True(t, ok)
	require.True(t, name.Required)
	require.Equal(t, "{\"name\": \"fido\"}\n", post.Body[1].Example)
	require.Equal(t, []model.Response{{Code: "201", Description: "Created"}}, post.Responses)

	require.Len(t, users.Resources, 1)
	item := users.Resources[0]
	require.Equal(t, "/{id}", item.RelativeURI)
	id, ok := item.URIParameters.Lookup("id")
	require.True(t, ok)
	require.True(t, id.Required)
	require.Equal(t, model.TypeInteger, id.Type)
	require.Equal(t, "delete", item.Methods[0].Method)
	require.Equal(t, []model.SecurityReference{{Name: "basic"}}, item.Methods[0].SecuredBy)

	put := item.Methods[1]
	require.Equal(t, []model.SecurityReference{model.AnonymousAccess, {Name: "basic"}}, put.SecuredBy)
	require.Len(t, put.Body, 1)
	require.Equal(t, "application/json", put.Body[0].MediaType)
	require.Equal(t, `{"name": "rex"}`, put.Body[0].Example)

	status := doc.Resources[1]
	require.Equal(t, []model.SecurityReference{{Name: "oauth_2_0"}}, status.Methods[0].SecuredBy)
}

func TestLoadRAMLImplicitURIParameters(t *testing.T) {
	result, err := Load([]byte(`#%RAML 0.8
title: Implicit
baseUri: http://{tenant}.example.com
/files/{name}:
  get:
`), "")
	require.NoError(t, err)

	tenant, ok := result.Document.BaseURIParameters.Lookup("tenant")
	require.True(t, ok)
	require.True(t, tenant.Required)

	name, ok := result.Document.Resources[0].URIParameters.Lookup("name")
	require.True(t, ok)
	require.True(t, name.Required)
	require.Equal(t, model.TypeString, name.Type)
}

const openAPIDocument = `openapi: 3.0.3
info:
  title: Pets
  version: 1.0.0
servers:
  - url: https://{env}.example.com/v1
    variables:
      env:
        default: api
        enum: [api, sandbox]
security:
  - basic: []
paths:
  /pets:
    get:
      security:
        - {}
        - basic: []
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            minimum: 1
            maximum: 100
      responses:
        '200':
          description: ok
    post:
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
      responses:
        '201':
          description: created
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
      security:
        - oauth: [read]
      responses:
        '200':
          description: ok
components:
  securitySchemes:
    basic:
      type: http
      scheme: basic
    oauth:
      type: oauth2
      flows:
        authorizationCode:
          authorizationUrl: https://auth.example.com/authorize
          tokenUrl: https://auth.example.com/token
          scopes:
            read: read pets
    key:
      type: apiKey
      in: header
      name: X-API-Key
`

func TestLoadOpenAPI(t *testing.T) {
	result, err := Load([]byte(openAPIDocument), "")
	require.NoError(t, err)
	require.Equal(t, FormatOpenAPI3, result.Format)
	require.Equal(t, "3.0.3", result.Version)
	require.Contains(t, result.Warnings, "security scheme key: apiKey is not supported")

	doc := result.Document
	require.Equal(t, "Pets", doc.Title)
	require.Equal(t, "1.0.0", doc.Version)
	require.Equal(t, "https://{env}.example.com/v1", doc.BaseURI)
	env, ok := doc.BaseURIParameters.Lookup("env")
	require.True(t, ok)
	require.Equal(t, "api", env.Default)

	require.Equal(t, model.KindBasic, doc.SecurityScheme("basic").Kind)
	oauth := doc.SecurityScheme("oauth")
	require.Equal(t, model.KindOAuth2, oauth.Kind)
	require.Equal(t, "https://auth.example.com/authorize", oauth.Settings.AuthorizationURI)
	require.Equal(t, []string{"read"}, oauth.Settings.Scopes)
	require.Equal(t, model.KindUnsupported, doc.SecurityScheme("key").Kind)

	require.Len(t, doc.Resources, 1)
	pets := doc.Resources[0]
	require.Equal(t, "/pets", pets.RelativeURI)
	require.Len(t, pets.Methods, 2)

	get := pets.Methods[0]
	require.Equal(t, "get", get.Method)
	require.Equal(t, []model.SecurityReference{model.AnonymousAccess, {Name: "basic"}}, get.SecuredBy)
	limit, ok := get.QueryParameters.Lookup("limit")
	require.True(t, ok)
	require.Equal(t, model.TypeInteger, limit.Type)
	require.Equal(t, 100.0, *limit.Maximum)

	post := pets.Methods[1]
	require.Equal(t, []model.SecurityReference{{Name: "basic"}}, post.SecuredBy)
	require.Len(t, post.Body, 1)
	name, ok := post.Body[0].FormParameters.Lookup("name")
	require.True(t, ok)
	require.True(t, name.Required)

	require.Len(t, pets.Resources, 1)
	item := pets.Resources[0]
	require.Equal(t, "/{petId}", item.RelativeURI)
	petID, ok := item.URIParameters.Lookup("petId")
	require.True(t, ok)
	require.True(t, petID.Required)
	require.Equal(t, model.TypeInteger, petID.Type)

	secured := item.Methods[0].SecuredBy
	require.Len(t, secured, 1)
	require.Equal(t, "oauth", secured[0].Name)
	require.True(t, secured[0].IsParameterized())
}

const swaggerDocument = `swagger: "2.0"
info:
  title: Legacy
  version: "2.1"
host: legacy.example.com
basePath: /api
schemes: [https]
securityDefinitions:
  basic:
    type: basic
paths:
  /items:
    get:
      security:
        - basic: []
      parameters:
        - name: q
          in: query
          type: string
      responses:
        200:
          description: ok
`

func TestLoadSwagger(t *testing.T) {
	result, err := Load([]byte(swaggerDocument), "")
	require.NoError(t, err)
	require.Equal(t, FormatSwagger2, result.Format)
	require.Equal(t, "2.0", result.Version)

	doc := result.Document
	require.Equal(t, "Legacy", doc.Title)
	require.Equal(t, "https://legacy.example.com/api", doc.BaseURI)
	require.Equal(t, model.KindBasic, doc.SecurityScheme("basic").Kind)

	require.Len(t, doc.Resources, 1)
	items := doc.Resources[0]
	require.Equal(t, "/items", items.RelativeURI)
	get := items.Methods[0]
	_, ok := get.QueryParameters.Lookup("q")
	require.True(t, ok)
	require.Equal(t, []model.SecurityReference{{Name: "basic"}}, get.SecuredBy)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Format
		wantErr error
	}{
		{name: "raml header", data: "#%RAML 0.8\ntitle: x\n", want: FormatRAML},
		{name: "raml without header", data: "title: x\n/users:\n  get:\n", want: FormatRAML},
		{name: "openapi", data: "openapi: 3.1.0\ninfo: {title: x, version: '1'}\n", want: FormatOpenAPI3},
		{name: "swagger", data: `{"swagger": "2.0"}`, want: FormatSwagger2},
		{name: "openapi 2", data: "openapi: 2.0\n", wantErr: ErrUnsupportedFormat},
		{name: "unknown", data: "name: x\n", wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := DetectFormat([]byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.raml")
	require.NoError(t, os.WriteFile(path, []byte(ramlDocument), 0644))

	result, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Example API", result.Document.Title)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.raml"))
	require.Error(t, err)
}

func TestSplitPath(t *testing.T) {
	require.Equal(t, []string{"/"}, splitPath("/"))
	require.Equal(t, []string{"/a", "/{b}", "/c"}, splitPath("/a/{b}/c/"))
}
