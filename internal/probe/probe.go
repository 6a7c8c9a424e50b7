// Package probe holds the fixed set of network checks that make up a
// battery run. Each probe is independent: it reads no other probe's result
// and returns its outcome instead of mutating shared state.
//
// Probes report three kinds of result:
//   - a passing or failing domain.Outcome for the condition they look for;
//   - a passing outcome with a "skipped" detail when the capability they
//     need (HTTP transport, ping binary) is unavailable;
//   - a non-nil error for anything outside those cases. The battery turns
//     such errors into failing outcomes.
package probe

import (
	"context"
	"time"

	"github.com/hamed0406/netcheck/internal/domain"
)

// Probe names, in battery order.
const (
	NameDNSResolution       = "DNS Resolution"
	NameDomainAccessibility = "Domain Accessibility"
	NamePortConnectivity    = "Port Connectivity"
	NameHTTPResponseTime    = "HTTP Response Time"
	NameMTU                 = "MTU Check"
	NameDNSServers          = "DNS Server Check"
	NamePacketLoss          = "Packet Loss"
	NameDPI                 = "DPI/Throttling Check"
)

// Timeouts bound every blocking operation a probe performs.
const (
	DNSTimeout        = 5 * time.Second
	DNSServerTimeout  = 3 * time.Second
	TCPTimeout        = 5 * time.Second
	HTTPTimeout       = 10 * time.Second
	MTUTimeout        = 10 * time.Second
	PacketLossTimeout = 15 * time.Second
)

// Heuristic thresholds.
const (
	// A response slower than this is reported as a warning, not a failure.
	SlowResponseThreshold = 5 * time.Second
	// Domain Accessibility fails when more than this share of domains is blocked.
	MaxBlockedPercent = 50
	// DPI check fails when HTTPS takes more than DPIRatio times as long as HTTP.
	DPIRatio = 3

	MTUPacketSize       = 1400
	MTUPingCount        = 3
	PacketLossPingCount = 5
)

const skippedHTTP = "Test skipped (HTTP transport unavailable)"

type Probe interface {
	Name() string
	Run(ctx context.Context) (domain.Outcome, error)
}

// Default returns the fixed battery in its declaration order.
func Default(caps Capabilities) []Probe {
	return []Probe{
		&DNSResolution{Resolver: caps.Resolver, Domains: CommonDomains, Timeout: DNSTimeout},
		&DomainAccessibility{Resolver: caps.Resolver, Domains: RestrictedDomains, Timeout: DNSTimeout},
		&PortConnectivity{Dialer: caps.Dialer, Endpoints: PortEndpoints, Timeout: TCPTimeout},
		&HTTPResponseTime{HTTP: caps.HTTP, URLs: LatencyURLs, Timeout: HTTPTimeout},
		&MTU{Runner: caps.Runner, GOOS: caps.GOOS, Target: PingTarget, Timeout: MTUTimeout},
		&DNSServers{Resolver: caps.Resolver, ResolverFor: caps.ResolverFor, Servers: DNSServerTable, Domain: IntegrityDomain, Timeout: DNSServerTimeout},
		&PacketLoss{Runner: caps.Runner, GOOS: caps.GOOS, Target: PingTarget, Timeout: PacketLossTimeout},
		&DPI{HTTP: caps.HTTP, PlainURL: DPIPlainURL, SecureURL: DPISecureURL, Timeout: HTTPTimeout},
	}
}
