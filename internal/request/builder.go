// Package request accumulates the data, query and header input of a console
// request into transport-ready Options and sends them.
package request

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const (
	FormData       = "multipart/form-data"
	FormURLEncoded = "application/x-www-form-urlencoded"
)

// Payload is the data of a request: Fields, Raw or a MultipartForm.
type Payload interface {
	payload()
}

// Fields are named values, serialized by the transport.
type Fields map[string]string

// Raw is a body passed through untouched.
type Raw string

// MultipartForm is a materialized multipart body, one part per field.
type MultipartForm struct {
	Parts []Part
}

type Part struct {
	Name  string
	Value string
}

func (Fields) payload()         {}
func (Raw) payload()            {}
func (*MultipartForm) payload() {}

// Options is the finalized record handed to the transport.
type Options struct {
	URL         string
	Method      string
	Headers     http.Header
	ContentType string
	Data        Payload
	Query       url.Values
	ProcessData bool
}

// Builder collects request input in any order.
type Builder struct {
	url         string
	method      string
	headers     http.Header
	contentType string
	data        Payload
	query       url.Values
	multipart   bool
}

func Create(rawURL, method string) *Builder {
	return &Builder{
		url:     rawURL,
		method:  strings.ToUpper(method),
		headers: http.Header{},
	}
}

// Data sets or replaces the payload.
func (b *Builder) Data(data Payload) {
	if fields, ok := data.(Fields); ok {
		data = maps.Clone(fields)
	}
	b.data = data
}

// QueryParam merges name into the field payload, creating it when empty.
// With a raw payload the parameter goes to the URL query instead.
func (b *Builder) QueryParam(name, value string) {
	switch data := b.data.(type) {
	case nil:
		b.data = Fields{name: value}
	case Fields:
		data[name] = value
	default:
		if b.query == nil {
			b.query = url.Values{}
		}
		b.query.Set(name, value)
	}
}

// Header sets a header. Content-Type is tracked separately: multipart is
// recorded as a flag so the transport can compute the boundary.
func (b *Builder) Header(name, value string) {
	if strings.EqualFold(name, "content-type") {
		if value == FormData {
			b.multipart = true
			return
		}
		b.multipart = false
		b.contentType = value
	}
	b.headers.Set(name, value)
}

// Headers replaces every header, resetting content type state.
func (b *Builder) Headers(headers map[string]string) {
	b.headers = http.Header{}
	b.multipart = false
	b.contentType = ""

	for _, name := range slices.Sorted(maps.Keys(headers)) {
		b.Header(name, headers[name])
	}
}

// Multipart reports whether a multipart body was requested.
func (b *Builder) Multipart() bool {
	return b.multipart
}

func (b *Builder) ToOptions() Options {
	opts := Options{
		URL:         b.url,
		Method:      b.method,
		Headers:     b.headers.Clone(),
		ContentType: b.contentType,
		Query:       b.query,
	}

	if b.data == nil {
		return opts
	}

	fields, isFields := b.data.(Fields)
	switch {
	case b.multipart && isFields:
		form := &MultipartForm{}
		for _, name := range slices.Sorted(maps.Keys(fields)) {
			form.Parts = append(form.Parts, Part{Name: name, Value: fields[name]})
		}
		opts.Data = form
		opts.ProcessData = false
	case b.multipart:
		opts.Data = b.data
		opts.ProcessData = false
	case isFields:
		opts.Data = maps.Clone(fields)
		opts.ProcessData = true
	default:
		opts.Data = b.data
		opts.ProcessData = true
	}

	return opts
}
