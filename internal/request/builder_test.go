package request

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToOptionsWithoutData(t *testing.T) {
	b := Create("http://example.com/items", "get")
	opts := b.ToOptions()

	require.Equal(t, "http://example.com/items", opts.URL)
	require.Equal(t, "GET", opts.Method)
	require.Nil(t, opts.Data)
	require.False(t, opts.ProcessData)
	require.Empty(t, opts.ContentType)
}

func TestQueryParamInitializesFields(t *testing.T) {
	b := Create("http://example.com", "GET")
	b.QueryParam("access_token", "abc")
	b.QueryParam("page", "2")

	opts := b.ToOptions()
	require.Equal(t, Fields{"access_token": "abc", "page": "2"}, opts.Data)
	require.True(t, opts.ProcessData)
}

func TestQueryParamMergesIntoExistingFields(t *testing.T) {
	input := Fields{"q": "go"}
	b := Create("http://example.com", "GET")
	b.Data(input)
	b.QueryParam("access_token", "abc")

	require.Equal(t, Fields{"q": "go", "access_token": "abc"}, b.ToOptions().Data)
	require.Equal(t, Fields{"q": "go"}, input, "caller's map must not be mutated")
}

func TestQueryParamWithRawBody(t *testing.T) {
	b := Create("http://example.com", "POST")
	b.Data(Raw(`{"a":1}`))
	b.QueryParam("access_token", "abc")

	opts := b.ToOptions()
	require.Equal(t, Raw(`{"a":1}`), opts.Data)
	require.Equal(t, "abc", opts.Query.Get("access_token"))
}

func TestDataReplacesPayload(t *testing.T) {
	b := Create("http://example.com", "POST")
	b.Data(Fields{"a": "1"})
	b.Data(Raw("body"))

	opts := b.ToOptions()
	require.Equal(t, Raw("body"), opts.Data)
	require.True(t, opts.ProcessData)
}

func TestHeaderContentType(t *testing.T) {
	t.Run("plain content type", func(t *testing.T) {
		b := Create("http://example.com", "POST")
		b.Header("Content-Type", "application/json")

		opts := b.ToOptions()
		require.Equal(t, "application/json", opts.ContentType)
		require.Equal(t, "application/json", opts.Headers.Get("Content-Type"))
	})

	t.Run("multipart is withheld", func(t *testing.T) {
		b := Create("http://example.com", "POST")
		b.Header("content-type", FormData)

		opts := b.ToOptions()
		require.True(t, b.Multipart())
		require.Empty(t, opts.ContentType)
		require.Empty(t, opts.Headers.Get("Content-Type"))
	})

	t.Run("later content type clears multipart", func(t *testing.T) {
		b := Create("http://example.com", "POST")
		b.Header("Content-Type", FormData)
		b.Header("CONTENT-TYPE", FormURLEncoded)

		require.False(t, b.Multipart())
		require.Equal(t, FormURLEncoded, b.ToOptions().ContentType)
	})
}

func TestHeadersResetsState(t *testing.T) {
	b := Create("http://example.com", "POST")
	b.Header("Content-Type", FormData)
	b.Header("X-Old", "1")

	b.Headers(map[string]string{"Accept": "application/json"})

	opts := b.ToOptions()
	require.False(t, b.Multipart())
	require.Empty(t, opts.ContentType)
	require.Empty(t, opts.Headers.Get("X-Old"))
	require.Equal(t, "application/json", opts.Headers.Get("Accept"))
}

func TestHeadersAppliesContentType(t *testing.T) {
	b := Create("http://example.com", "POST")
	b.Headers(map[string]string{"Content-Type": "text/plain", "X-Trace": "t"})

	opts := b.ToOptions()
	require.Equal(t, "text/plain", opts.ContentType)
	require.Equal(t, "t", opts.Headers.Get("X-Trace"))
}

func TestToOptionsMultipart(t *testing.T) {
	b := Create("http://example.com/upload", "POST")
	b.Data(Fields{"b": "2", "a": "1"})
	b.Header("Content-Type", FormData)

	opts := b.ToOptions()
	require.False(t, opts.ProcessData)
	require.Equal(t, &MultipartForm{Parts: []Part{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}}, opts.Data)
}

func TestToOptionsMultipartRaw(t *testing.T) {
	b := Create("http://example.com/upload", "POST")
	b.Header("Content-Type", FormData)
	b.Data(Raw("raw"))

	opts := b.ToOptions()
	require.False(t, opts.ProcessData)
	require.Equal(t, Raw("raw"), opts.Data)
}
