package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of a response body is read for timing.
const maxBodyBytes = 1 << 20

type HTTPResponse struct {
	StatusCode int
	Elapsed    time.Duration
}

// HTTPChecker is the HTTP transport used by the latency and DPI probes.
// Elapsed covers the request and reading the (capped) body.
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPChecker) Get(ctx context.Context, target string) (HTTPResponse, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return HTTPResponse{}, err
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return HTTPResponse{Elapsed: time.Since(start)}, err
	}
	defer resp.Body.Close()

	_, err = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	out := HTTPResponse{StatusCode: resp.StatusCode, Elapsed: time.Since(start)}
	return out, err
}
