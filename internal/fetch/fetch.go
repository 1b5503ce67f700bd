package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// Text reads the content at ref and returns it as a string. It supports
// plain file paths, file:// URLs, and http(s) URLs; content is capped at
// maxBytes. An empty ref returns an empty string.
func Text(ctx context.Context, ref string, maxBytes int) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if p, ok := strings.CutPrefix(ref, "file://"); ok {
		return readLocal(p, maxBytes)
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return readLocal(ref, maxBytes)
	}

	c := retryablehttp.NewClient()
	c.Logger = nil
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s: %d", ref, resp.StatusCode)
	}
	lr := &io.LimitedReader{R: resp.Body, N: int64(maxBytes)}
	b, err := io.ReadAll(lr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readLocal(path string, maxBytes int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck
	lr := &io.LimitedReader{R: f, N: int64(maxBytes)}
	b, err := io.ReadAll(lr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
