package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is wrapped by Get for 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrBodyTooLarge is returned when a response exceeds maxBody.
	ErrBodyTooLarge = errors.New("response body too large")
)

const (
	maxSnippet = 8 << 10
	maxBody    = 4 << 20
)

func Get[r any](h *http.Client, ctx context.Context, url string, headers map[string]string) (r, error) {

	var response r

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response, err
	}

	for key, val := range headers {
		req.Header.Add(key, val)
	}

	resp, err := h.Do(req)
	if err != nil {
		return response, err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return response, err
	}
	if len(responseBytes) > maxBody {
		return response, fmt.Errorf("http %s: %w", url, ErrBodyTooLarge)
	}

	if resp.StatusCode == http.StatusNotFound {
		return response, fmt.Errorf("http %s: %w", url, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return response, fmt.Errorf("http %s: %s: %s", url, resp.Status, snippet(responseBytes))
	}

	if err := json.Unmarshal(responseBytes, &response); err != nil {
		return response, fmt.Errorf("unmarshal %s: %w: %s", url, err, snippet(responseBytes))
	}

	return response, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxSnippet {
		s = s[:maxSnippet]
	}
	return s
}
