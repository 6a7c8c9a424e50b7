package probe

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/hamed0406/netcheck/internal/sysexec"
)

// ---- test helpers ----

// fakeResolver resolves every host to 192.0.2.1 unless it is listed in fail.
type fakeResolver struct {
	fail map[string]error
}

func (f *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if err, ok := f.fail[host]; ok {
		return nil, err
	}
	return []string{"192.0.2.1"}, nil
}

func notFound(host string) error {
	return &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

type fakeDialer struct {
	refuse map[string]bool
}

func (f *fakeDialer) DialContext(_ context.Context, _, address string) (net.Conn, error) {
	if f.refuse[address] {
		return nil, errors.New("connection refused")
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

type fakeHTTP struct {
	mu      sync.Mutex
	elapsed map[string]time.Duration
	fail    map[string]bool
	calls   []string
}

func (f *fakeHTTP) Get(_ context.Context, url string) (HTTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.fail[url] {
		return HTTPResponse{}, errors.New("dial tcp: i/o timeout")
	}
	d, ok := f.elapsed[url]
	if !ok {
		d = 100 * time.Millisecond
	}
	return HTTPResponse{StatusCode: 200, Elapsed: d}, nil
}

// fakeRunner returns a canned result or error and records the arguments.
type fakeRunner struct {
	res  *sysexec.Result
	err  error
	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (*sysexec.Result, error) {
	f.name, f.args = name, args
	return f.res, f.err
}
