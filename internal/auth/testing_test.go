package auth

import "net/url"

// recorder is a minimal Request used to observe signing.
type recorder struct {
	headers map[string]string
	query   url.Values
}

func newRecorder() *recorder {
	return &recorder{headers: map[string]string{}, query: url.Values{}}
}

func (r *recorder) Header(name, value string) {
	r.headers[name] = value
}

func (r *recorder) QueryParam(name, value string) {
	r.query.Set(name, value)
}
