package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// MaxDownloadSize caps the size of a downloaded document.
const MaxDownloadSize = 32 << 20

// Download retrieves the resource at uri and checks that the served
// content type contains want (e.g. "json"). An empty want accepts anything.
func Download(ctx context.Context, client *http.Client, uri, want string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request for %s: %w", uri, err)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("unable to download %s: status %s", uri, res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	if len(data) > MaxDownloadSize {
		return nil, fmt.Errorf("response of %s exceeds %d bytes", uri, MaxDownloadSize)
	}

	if want != "" {
		ctype := res.Header.Get("Content-Type")
		if ctype == "" {
			ctype = DetectContentType(data)
		}
		if !strings.Contains(ctype, want) {
			return nil, fmt.Errorf("%s served %q, expected %s", uri, ctype, want)
		}
	}
	return data, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

// DetectContentType sniffs the MIME type of the content.
// SVG documents are recognized even without an XML declaration.
func DetectContentType(data []byte) string {
	// Only the first 512 bytes are used to sniff the content type.
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ctype := http.DetectContentType(head)
	if strings.HasPrefix(ctype, "text/") && strings.Contains(string(head), "<svg") {
		return "image/svg+xml"
	}
	return ctype
}
