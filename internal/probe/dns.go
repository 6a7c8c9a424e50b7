package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hamed0406/netcheck/internal/domain"
)

// DNSResolution passes when every domain resolves to at least one address.
type DNSResolution struct {
	Resolver Resolver
	Domains  []string
	Timeout  time.Duration
}

func (p *DNSResolution) Name() string { return NameDNSResolution }

func (p *DNSResolution) Run(ctx context.Context) (domain.Outcome, error) {
	var failed []string
	for _, d := range p.Domains {
		if res := resolve(ctx, p.Resolver, d, p.Timeout); !res.OK() {
			failed = append(failed, fmt.Sprintf("%s (%s)", d, res.Class))
		}
	}
	if len(failed) > 0 {
		return domain.Fail(p.Name(), "Some domains failed to resolve: "+strings.Join(failed, ", ")), nil
	}
	return domain.Pass(p.Name(), "All common domains resolved successfully"), nil
}

// DomainAccessibility tolerates some blocked domains and fails only when
// more than MaxBlockedPercent of them do not resolve.
type DomainAccessibility struct {
	Resolver Resolver
	Domains  []string
	Timeout  time.Duration
}

func (p *DomainAccessibility) Name() string { return NameDomainAccessibility }

func (p *DomainAccessibility) Run(ctx context.Context) (domain.Outcome, error) {
	total := len(p.Domains)
	blocked := 0
	for _, d := range p.Domains {
		if res := resolve(ctx, p.Resolver, d, p.Timeout); !res.OK() {
			blocked++
		}
	}
	detail := fmt.Sprintf("%d/%d domains accessible, %d blocked", total-blocked, total, blocked)
	if blocked*100 > total*MaxBlockedPercent {
		return domain.Fail(p.Name(), detail), nil
	}
	return domain.Pass(p.Name(), detail), nil
}

// DNSServers resolves one domain through each listed server.
type DNSServers struct {
	Resolver    Resolver
	ResolverFor func(server string) Resolver
	Servers     []DNSServer
	Domain      string
	Timeout     time.Duration
}

func (p *DNSServers) Name() string { return NameDNSServers }

func (p *DNSServers) Run(ctx context.Context) (domain.Outcome, error) {
	var failed []string
	for _, s := range p.Servers {
		r := p.Resolver
		if p.ResolverFor != nil {
			r = p.ResolverFor(s.IP)
		}
		if res := resolve(ctx, r, p.Domain, p.Timeout); res.Err != nil {
			failed = append(failed, fmt.Sprintf("%s (%s)", s.Name, s.IP))
		}
	}
	if len(failed) > 0 {
		return domain.Fail(p.Name(), "Some DNS servers not responding: "+strings.Join(failed, ", ")), nil
	}
	return domain.Pass(p.Name(), "All tested DNS servers responding"), nil
}
