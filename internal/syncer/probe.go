package syncer

import (
	"context"
	"net"
	"net/url"
	"time"
)

// Probe answers a single point-in-time question: is a network path to
// the remote service currently reachable?
//
// The answer is queried immediately before each strategy decision and
// never cached across an operation - connectivity can flap mid-flight,
// and a call that loses the network after starting surfaces as a
// transport failure from the client itself, not from the probe.
type Probe interface {
	Online(ctx context.Context) bool
}

// DialProbe checks reachability by opening (and immediately closing) a
// TCP connection to the service host.
type DialProbe struct {
	host    string
	timeout time.Duration
}

// NewDialProbe builds a probe for the service at baseURL.
func NewDialProbe(baseURL string) (*DialProbe, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	return &DialProbe{host: host, timeout: 3 * time.Second}, nil
}

// Online reports current reachability of the service host.
func (p *DialProbe) Online(ctx context.Context) bool {
	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", p.host)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// ProbeFunc adapts a function to the Probe interface. Tests use this to
// script connectivity.
type ProbeFunc func(ctx context.Context) bool

func (f ProbeFunc) Online(ctx context.Context) bool { return f(ctx) }
