package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hamed0406/netcheck/internal/domain"
)

// HTTPResponseTime fetches each URL. Any completed request counts, whatever
// its status; slow responses only annotate the detail.
type HTTPResponseTime struct {
	HTTP    HTTPClient
	URLs    []string
	Timeout time.Duration
}

func (p *HTTPResponseTime) Name() string { return NameHTTPResponseTime }

func (p *HTTPResponseTime) Run(ctx context.Context) (domain.Outcome, error) {
	if p.HTTP == nil {
		return domain.Pass(p.Name(), skippedHTTP), nil
	}

	var failed, slow []string
	for _, u := range p.URLs {
		resp, err := get(ctx, p.HTTP, u, p.Timeout)
		if err != nil {
			failed = append(failed, u)
			continue
		}
		if resp.Elapsed > SlowResponseThreshold {
			slow = append(slow, fmt.Sprintf("%s %.1fs", u, resp.Elapsed.Seconds()))
		}
	}

	switch {
	case len(failed) > 0:
		return domain.Fail(p.Name(), "HTTP requests failed: "+strings.Join(failed, ", ")), nil
	case len(slow) > 0:
		return domain.Pass(p.Name(), "Response times may indicate throttling: "+strings.Join(slow, ", ")), nil
	default:
		return domain.Pass(p.Name(), "HTTP responses normal"), nil
	}
}

// DPI compares a plain HTTP fetch against the same resource over HTTPS.
// Only a clear slowdown of HTTPS fails; request errors do not.
type DPI struct {
	HTTP      HTTPClient
	PlainURL  string
	SecureURL string
	Timeout   time.Duration
}

func (p *DPI) Name() string { return NameDPI }

func (p *DPI) Run(ctx context.Context) (domain.Outcome, error) {
	if p.HTTP == nil {
		return domain.Pass(p.Name(), skippedHTTP), nil
	}

	plain, errPlain := get(ctx, p.HTTP, p.PlainURL, p.Timeout)
	secure, errSecure := get(ctx, p.HTTP, p.SecureURL, p.Timeout)

	if errPlain == nil && errSecure == nil && plain.Elapsed > 0 &&
		secure.Elapsed > DPIRatio*plain.Elapsed {
		return domain.Fail(p.Name(), fmt.Sprintf("HTTPS(%.2fs) much slower than HTTP(%.2fs)",
			secure.Elapsed.Seconds(), plain.Elapsed.Seconds())), nil
	}

	detail := "No obvious throttling detected"
	switch {
	case errPlain != nil && errSecure != nil:
		detail += " (HTTP and HTTPS requests failed)"
	case errPlain != nil:
		detail += " (HTTP request failed)"
	case errSecure != nil:
		detail += " (HTTPS request failed)"
	}
	return domain.Pass(p.Name(), detail), nil
}

func get(ctx context.Context, c HTTPClient, url string, timeout time.Duration) (HTTPResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Get(ctx, url)
}
