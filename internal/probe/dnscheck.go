package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNS classes attached to a lookup.
const (
	ClassResolves          = "RESOLVES"
	ClassNXDomain          = "NXDOMAIN"
	ClassNoAddress         = "NO_A_RECORD"
	ClassServfailOrTimeout = "SERVFAIL_or_TIMEOUT"
	ClassInvalidName       = "INVALID_NAME"
	ClassError             = "ERROR"
)

var (
	errInvalidName = errors.New("invalid domain name")
	errNoAddress   = errors.New("no addresses returned")
)

type Resolution struct {
	Domain  string
	Addrs   []string
	Class   string
	Elapsed time.Duration
	Err     error
}

func (r Resolution) OK() bool { return r.Class == ClassResolves }

// resolve looks up one domain with its own timeout and classifies the result.
func resolve(ctx context.Context, r Resolver, domain string, timeout time.Duration) Resolution {
	res := Resolution{Domain: strings.TrimSpace(domain)}
	if res.Domain == "" || strings.Contains(res.Domain, "://") {
		res.Class = ClassInvalidName
		res.Err = errInvalidName
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	addrs, err := r.LookupHost(ctx, res.Domain)
	res.Elapsed = time.Since(start)
	res.Addrs = addrs

	switch {
	case err != nil:
		res.Err = err
		res.Class = ClassifyDNSError(err)
	case len(addrs) == 0:
		res.Err = errNoAddress
		res.Class = ClassNoAddress
	default:
		res.Class = ClassResolves
	}
	return res
}

// ClassifyDNSError maps a resolver error to one of the DNS classes.
func ClassifyDNSError(err error) string {
	if err == nil {
		return ClassResolves
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			return ClassNXDomain
		}
		if de.IsTemporary || de.Timeout() {
			return ClassServfailOrTimeout
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassServfailOrTimeout
	}
	return ClassError
}
