package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_ShouldDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[["a"]]`))
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	data, err := Download(context.Background(), srv.Client(), srv.URL+"/json", "json")
	require.NoError(t, err)
	assert.Equal(t, `[["a"]]`, string(data))

	_, err = Download(context.Background(), srv.Client(), srv.URL+"/html", "json")
	assert.ErrorContains(t, err, "expected json")

	_, err = Download(context.Background(), srv.Client(), srv.URL+"/missing", "")
	assert.ErrorContains(t, err, "404")
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert.True(t, IsValidUrl("https://script.google.com/macros/s/abc/exec"))
	assert.False(t, IsValidUrl("assets/icons"))
	assert.False(t, IsValidUrl("/tmp/file.json"))
}

func TestUtils_ShouldDetectContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", DetectContentType([]byte(`<?xml version="1.0"?><svg/>`)))
	assert.Equal(t, "image/svg+xml", DetectContentType([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)))
	assert.Equal(t, "image/png", DetectContentType([]byte("\x89PNG\r\n\x1a\n0000")))
}
