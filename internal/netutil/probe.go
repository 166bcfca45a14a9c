package netutil

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"
)

// Prober tests which hosts on a subnet accept TCP connections on a port.
// It is the cheap first pass of subnet discovery: anything with the port
// open is then asked to identify itself over HTTP.
type Prober struct {
	timeout     time.Duration
	concurrency int
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeTimeout sets the per-host connect timeout.
func WithProbeTimeout(timeout time.Duration) ProberOption {
	return func(p *Prober) {
		p.timeout = timeout
	}
}

// WithProbeConcurrency caps how many hosts are probed at once.
func WithProbeConcurrency(n int) ProberOption {
	return func(p *Prober) {
		p.concurrency = n
	}
}

// NewProber creates a prober. Defaults suit a /24 of sleepy embedded
// devices: short timeout, enough concurrency to sweep the block quickly.
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		timeout:     2 * time.Second,
		concurrency: 64,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Open reports whether host accepts a TCP connection on port within the
// probe timeout.
func (p *Prober) Open(ctx context.Context, host string, port int) bool {
	dialer := &net.Dialer{Timeout: p.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// OpenHosts probes every host for the port and returns those that answered,
// in ascending address order. Cancelling ctx stops new probes; probes in
// flight fail on their own timeout.
func (p *Prober) OpenHosts(ctx context.Context, hosts []string, port int) []string {
	if len(hosts) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		open []string
		wg   sync.WaitGroup
		sem  = make(chan struct{}, p.concurrency)
	)

	for _, host := range hosts {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(h string) {
			defer wg.Done()
			defer func() { <-sem }()

			if p.Open(ctx, h, port) {
				mu.Lock()
				open = append(open, h)
				mu.Unlock()
			}
		}(host)
	}

	wg.Wait()

	// Probe completion order is nondeterministic; restore address order so
	// scan output is stable.
	sort.Slice(open, func(i, j int) bool {
		return ipLess(open[i], open[j])
	})
	return open
}

// ipLess orders IPv4 addresses numerically, falling back to string order
// for anything unparsable.
func ipLess(a, b string) bool {
	ipA, ipB := net.ParseIP(a).To4(), net.ParseIP(b).To4()
	if ipA == nil || ipB == nil {
		return a < b
	}
	for i := 0; i < 4; i++ {
		if ipA[i] != ipB[i] {
			return ipA[i] < ipB[i]
		}
	}
	return false
}
