package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Response is what the console shows after a request completes.
type Response struct {
	RequestURL  string
	Status      int
	StatusText  string
	Headers     map[string]string
	ContentType string
	Body        string
}

// Send builds an *http.Request from opts and executes it with client.
func Send(ctx context.Context, client *http.Client, opts Options) (*Response, error) {
	req, err := NewHTTPRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	headers := ParseHeaders(resp.Header)
	result := &Response{
		RequestURL: req.URL.String(),
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    headers,
		Body:       string(body),
	}
	if ct := headers["content-type"]; ct != "" {
		result.ContentType = MediaType(ct)
	}
	return result, nil
}

// NewHTTPRequest encodes opts the way a browser form submission would:
// processed fields go to the query string for GET and HEAD and to an
// urlencoded body otherwise.
func NewHTTPRequest(ctx context.Context, opts Options) (*http.Request, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing request url: %w", err)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	inURL := method == http.MethodGet || method == http.MethodHead

	query := u.Query()
	for name, values := range opts.Query {
		query[name] = values
	}

	var body io.Reader
	var rawQuery string
	contentType := opts.ContentType

	switch data := opts.Data.(type) {
	case nil:
	case Fields:
		if inURL {
			for name, value := range data {
				query.Set(name, value)
			}
			break
		}
		form := url.Values{}
		for name, value := range data {
			form.Set(name, value)
		}
		body = strings.NewReader(form.Encode())
		if contentType == "" {
			contentType = FormURLEncoded
		}
	case Raw:
		if inURL {
			rawQuery = string(data)
			break
		}
		body = strings.NewReader(string(data))
	case *MultipartForm:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, part := range data.Parts {
			if err := w.WriteField(part.Name, part.Value); err != nil {
				return nil, fmt.Errorf("writing multipart field %s: %w", part.Name, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("closing multipart body: %w", err)
		}
		body = &buf
		contentType = w.FormDataContentType()
	default:
		return nil, fmt.Errorf("unsupported payload %T", data)
	}

	u.RawQuery = query.Encode()
	if rawQuery != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&"
		}
		u.RawQuery += rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for name, values := range opts.Headers {
		req.Header[name] = append([]string(nil), values...)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// ParseHeaders lower-cases header names and joins repeated values.
func ParseHeaders(header http.Header) map[string]string {
	parsed := make(map[string]string, len(header))
	for name, values := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		joined := strings.Join(values, ", ")
		if prev, ok := parsed[key]; ok {
			joined = prev + ", " + joined
		}
		parsed[key] = joined
	}
	return parsed
}

// MediaType returns the media type of a Content-Type value without its
// parameters.
func MediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	return mt
}
