package discovery

import (
	"context"

	"github.com/updtrr/updtrr/internal/netutil"
)

// SubnetSource discovers devices by sweeping a CIDR block: a cheap TCP
// probe first, then an info fetch against every host with the port open.
// It works on networks where multicast is filtered, at the cost of probing
// every address in the block.
type SubnetSource struct {
	Client InfoFetcher

	// CIDR is the block to sweep, e.g. "192.168.1.0/24".
	CIDR string

	// Port is the device HTTP port. 80 when zero.
	Port int

	// Prober overrides the default probe settings.
	Prober *netutil.Prober
}

// Find sweeps the block and returns every host that identifies as an AxeOS
// device, in ascending address order.
func (s *SubnetSource) Find(ctx context.Context) ([]Device, error) {
	hosts, err := netutil.ExpandCIDR(s.CIDR)
	if err != nil {
		return nil, err
	}

	port := s.Port
	if port == 0 {
		port = 80
	}

	prober := s.Prober
	if prober == nil {
		prober = netutil.NewProber()
	}

	open := prober.OpenHosts(ctx, hosts, port)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// The confirmation pass runs sequentially. Open hosts are few after
	// the probe, and a burst of HTTP requests against half-booted devices
	// causes spurious timeouts.
	var devices []Device
	for _, host := range open {
		if ctx.Err() != nil {
			return devices, ctx.Err()
		}
		if d := identify(ctx, s.Client, hostAddress(host, port)); d != nil {
			devices = append(devices, *d)
		}
	}

	return devices, nil
}

// StaticSource wraps a fixed address list in the Source interface, letting
// explicit addresses and discovered devices share one code path. Addresses
// are still confirmed against the device before being reported.
type StaticSource struct {
	Client    InfoFetcher
	Addresses []string
}

// Find identifies each configured address in order.
func (s *StaticSource) Find(ctx context.Context) ([]Device, error) {
	var devices []Device
	for _, addr := range s.Addresses {
		if ctx.Err() != nil {
			return devices, ctx.Err()
		}
		if d := identify(ctx, s.Client, addr); d != nil {
			devices = append(devices, *d)
		}
	}
	return devices, nil
}
