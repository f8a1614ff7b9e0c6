package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>A Great Paper</title>
	<meta name="description" content="An in-depth look at distributed systems.">
	<meta property="og:image" content="https://example.com/thumb.png">
	<meta name="author" content="Jane Doe">
</head>
<body>hello</body>
</html>`

func TestExtract_MetaTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	meta, err := NewHTTPExtractor().Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "A Great Paper", meta.Title)
	assert.Equal(t, "An in-depth look at distributed systems.", meta.Description)
	assert.Equal(t, "https://example.com/thumb.png", meta.Thumbnail)
	assert.Equal(t, "Jane Doe", meta.Author)
}

func TestExtract_OpenGraphFallbacks(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="OG Title">
		<meta property="og:description" content="OG description">
	</head><body></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	meta, err := NewHTTPExtractor().Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "OG Title", meta.Title)
	assert.Equal(t, "OG description", meta.Description)
}

func TestExtract_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPExtractor().Extract(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestExtract_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := NewHTTPExtractor().Extract(context.Background(), srv.URL)
	assert.Error(t, err)
}
