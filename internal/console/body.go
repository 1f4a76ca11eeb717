package console

import (
	"github.com/kolah/apiconsole/internal/inspector"
	"github.com/kolah/apiconsole/internal/request"
)

// BodyOptions describes which kind of body input a method offers.
type BodyOptions struct {
	// MediaType is the selected media type, the first declared one by default.
	MediaType string

	SupportsMediaType      bool
	SupportsFormURLEncoded bool
	SupportsFormData       bool
	SupportsCustomBody     bool
}

func NewBodyOptions(method *inspector.Method) BodyOptions {
	var o BodyOptions
	for _, body := range method.Body {
		if o.MediaType == "" {
			o.MediaType = body.MediaType
		}
		o.SupportsMediaType = true

		switch body.MediaType {
		case request.FormURLEncoded:
			o.SupportsFormURLEncoded = true
		case request.FormData:
			o.SupportsFormData = true
		default:
			o.SupportsCustomBody = true
		}
	}
	return o
}

// ShowBody reports whether a free-form body is sent.
func (o BodyOptions) ShowBody() bool {
	return o.SupportsCustomBody && !o.ShowURLEncodedForm() && !o.ShowMultipartForm()
}

func (o BodyOptions) ShowURLEncodedForm() bool {
	if o.MediaType != "" {
		return o.MediaType == request.FormURLEncoded
	}
	return !o.SupportsCustomBody && o.SupportsFormURLEncoded
}

func (o BodyOptions) ShowMultipartForm() bool {
	if o.MediaType != "" {
		return o.MediaType == request.FormData
	}
	return !o.SupportsCustomBody && !o.SupportsFormURLEncoded && o.SupportsFormData
}
