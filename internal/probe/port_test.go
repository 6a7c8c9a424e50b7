package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPortConnectivity(t *testing.T) {
	t.Run("all open", func(t *testing.T) {
		p := &PortConnectivity{Dialer: &fakeDialer{}, Endpoints: PortEndpoints, Timeout: time.Second}
		out, err := p.Run(context.Background())
		if err != nil || !out.Passed {
			t.Fatalf("want pass, got %+v err=%v", out, err)
		}
	})

	t.Run("one refused", func(t *testing.T) {
		d := &fakeDialer{refuse: map[string]bool{"api.github.com:443": true}}
		p := &PortConnectivity{Dialer: d, Endpoints: PortEndpoints, Timeout: time.Second}
		out, _ := p.Run(context.Background())
		if out.Passed {
			t.Fatalf("want failure, got %+v", out)
		}
		if !strings.Contains(out.Detail, "api.github.com:443 (HTTPS)") {
			t.Fatalf("detail=%q", out.Detail)
		}
	})
}

func TestPortConnectivity_RealListener(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	defer s.Close()
	host, port, err := net.SplitHostPort(strings.TrimPrefix(s.URL, "http://"))
	if err != nil {
		t.Fatal(err)
	}
	p := &PortConnectivity{
		Dialer:    &net.Dialer{},
		Endpoints: []Endpoint{{Host: host, Port: port, Protocol: "HTTP"}},
		Timeout:   time.Second,
	}
	out, _ := p.Run(context.Background())
	if !out.Passed {
		t.Fatalf("want pass against local listener, got %+v", out)
	}
}
