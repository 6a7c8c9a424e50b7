package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hamed0406/netcheck/internal/domain"
)

// PortConnectivity opens a TCP connection to each endpoint.
type PortConnectivity struct {
	Dialer    Dialer
	Endpoints []Endpoint
	Timeout   time.Duration
}

func (p *PortConnectivity) Name() string { return NamePortConnectivity }

func (p *PortConnectivity) Run(ctx context.Context) (domain.Outcome, error) {
	var blocked []string
	for _, ep := range p.Endpoints {
		if err := p.connect(ctx, ep); err != nil {
			blocked = append(blocked, fmt.Sprintf("%s:%s (%s)", ep.Host, ep.Port, ep.Protocol))
		}
	}
	if len(blocked) > 0 {
		return domain.Fail(p.Name(), "Some ports are blocked: "+strings.Join(blocked, ", ")), nil
	}
	return domain.Pass(p.Name(), "All tested ports are accessible"), nil
}

func (p *PortConnectivity) connect(ctx context.Context, ep Endpoint) error {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	conn, err := p.Dialer.DialContext(ctx, "tcp", net.JoinHostPort(ep.Host, ep.Port))
	if err != nil {
		return err
	}
	return conn.Close()
}
