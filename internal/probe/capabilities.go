package probe

import (
	"context"
	"net"
	"runtime"

	"github.com/hamed0406/netcheck/internal/sysexec"
)

type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type HTTPClient interface {
	Get(ctx context.Context, url string) (HTTPResponse, error)
}

type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (*sysexec.Result, error)
}

// Capabilities is everything the probes touch outside the process.
// HTTP is optional: a nil HTTP makes the HTTP-based probes skip.
// ResolverFor is optional too; without it DNS Server Check falls back to
// Resolver for every server.
type Capabilities struct {
	Resolver    Resolver
	ResolverFor func(server string) Resolver
	Dialer      Dialer
	HTTP        HTTPClient
	Runner      CommandRunner
	GOOS        string
}

// DefaultCapabilities wires the probes to the real network.
func DefaultCapabilities(httpEnabled bool) Capabilities {
	caps := Capabilities{
		Resolver:    net.DefaultResolver,
		ResolverFor: ServerResolver,
		Dialer:      &net.Dialer{},
		Runner:      sysexec.Runner{},
		GOOS:        runtime.GOOS,
	}
	if httpEnabled {
		caps.HTTP = NewHTTPChecker(HTTPTimeout)
	}
	return caps
}

// ServerResolver returns a resolver that sends every query to server:53.
func ServerResolver(server string) Resolver {
	addr := net.JoinHostPort(server, "53")
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}
}
