package probe

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/sysexec"
)

var errNoLossFigure = errors.New("no packet loss figure in ping output")

// Matches "0% packet loss", "100.0% packet loss" and Windows' "(0% loss)".
var pingLossRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)% (?:packet )?loss`)

// ParseLoss extracts the packet loss percentage from ping output.
func ParseLoss(out string) (float64, error) {
	m := pingLossRe.FindStringSubmatch(out)
	if len(m) != 2 {
		return 0, errNoLossFigure
	}
	return strconv.ParseFloat(m[1], 64)
}

// pingArgs builds ping arguments for goos. size > 0 requests fixed-size
// packets with the don't-fragment bit set.
func pingArgs(goos string, count, size int, target string) []string {
	n, s := strconv.Itoa(count), strconv.Itoa(size)
	switch goos {
	case "windows":
		if size > 0 {
			return []string{"-n", n, "-l", s, "-f", target}
		}
		return []string{"-n", n, target}
	case "darwin", "freebsd", "netbsd", "openbsd":
		if size > 0 {
			return []string{"-D", "-c", n, "-s", s, target}
		}
		return []string{"-c", n, target}
	default:
		if size > 0 {
			return []string{"-c", n, "-s", s, "-M", "do", target}
		}
		return []string{"-c", n, target}
	}
}

// MTU sends non-fragmentable pings; a clean exit means the path carries
// MTUPacketSize-byte packets. Missing ping or a failed invocation passes.
type MTU struct {
	Runner  CommandRunner
	GOOS    string
	Target  string
	Timeout time.Duration
}

func (p *MTU) Name() string { return NameMTU }

func (p *MTU) Run(ctx context.Context) (domain.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	res, err := p.Runner.Run(ctx, "ping", pingArgs(p.GOOS, MTUPingCount, MTUPacketSize, p.Target)...)
	switch {
	case errors.Is(err, sysexec.ErrTimeout):
		return domain.Fail(p.Name(), "Ping timeout"), nil
	case err != nil:
		return domain.Pass(p.Name(), "Test could not be completed: "+err.Error()), nil
	case res.ExitCode == 0:
		return domain.Pass(p.Name(), "No fragmentation issues detected"), nil
	default:
		return domain.Fail(p.Name(), fmt.Sprintf("Potential MTU/fragmentation issues (ping exit %d)", res.ExitCode)), nil
	}
}

// PacketLoss pings the target and reads the loss percentage ping reports.
// Exit status is ignored: ping exits non-zero on loss, and the figure is
// what matters.
type PacketLoss struct {
	Runner  CommandRunner
	GOOS    string
	Target  string
	Timeout time.Duration
}

func (p *PacketLoss) Name() string { return NamePacketLoss }

func (p *PacketLoss) Run(ctx context.Context) (domain.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	res, err := p.Runner.Run(ctx, "ping", pingArgs(p.GOOS, PacketLossPingCount, 0, p.Target)...)
	switch {
	case errors.Is(err, sysexec.ErrNotFound):
		return domain.Pass(p.Name(), "Test skipped (ping not available)"), nil
	case errors.Is(err, sysexec.ErrTimeout):
		return domain.Fail(p.Name(), "Ping timeout"), nil
	case err != nil:
		return domain.Pass(p.Name(), "Test could not be completed: "+err.Error()), nil
	}

	loss, err := ParseLoss(res.Stdout)
	if err != nil {
		// ping gives up before printing statistics, e.g. "Network is unreachable"
		if res.ExitCode != 0 {
			return domain.Fail(p.Name(), fmt.Sprintf("Complete packet loss detected (ping exit %d, no statistics)", res.ExitCode)), nil
		}
		return domain.Outcome{}, fmt.Errorf("parse ping output: %w", err)
	}
	switch {
	case loss == 0:
		return domain.Pass(p.Name(), "Connection stable"), nil
	case loss >= 100:
		return domain.Fail(p.Name(), "Complete packet loss detected"), nil
	default:
		return domain.Fail(p.Name(), fmt.Sprintf("Packet loss detected (%g%%)", loss)), nil
	}
}
