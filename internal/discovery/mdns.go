package discovery

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// serviceType is the mDNS service AxeOS advertises its web interface
	// under.
	serviceType = "_http._tcp"

	serviceDomain = "local."

	// DefaultBrowseTimeout bounds how long an mDNS browse collects
	// advertisements.
	DefaultBrowseTimeout = 10 * time.Second
)

// bitaxePattern matches hostnames AxeOS devices advertise. Stock firmware
// uses "bitaxe" or "bitaxe-<suffix>"; renamed devices are still caught by
// the subnet sweep or the info confirmation step.
var bitaxePattern = regexp.MustCompile(`(?i)^(bitaxe|axeos)[\w-]*\.local\.?$`)

// MDNSSource discovers devices by browsing mDNS advertisements and
// confirming each candidate against its info endpoint.
type MDNSSource struct {
	Client InfoFetcher

	// Timeout bounds the browse phase. DefaultBrowseTimeout when zero.
	Timeout time.Duration
}

// Find browses for the full timeout, then identifies every candidate whose
// hostname looks like a Bitaxe. Candidates that stop answering between the
// advertisement and the confirmation are dropped silently.
func (s *MDNSSource) Find(ctx context.Context) ([]Device, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	candidates := make(chan string, 64)

	go func() {
		defer close(candidates)
		seen := make(map[string]bool)
		for entry := range entries {
			addr, ok := candidateAddress(entry)
			if !ok || seen[addr] {
				continue
			}
			seen[addr] = true
			candidates <- addr
		}
	}()

	if err := resolver.Browse(browseCtx, serviceType, serviceDomain, entries); err != nil {
		return nil, fmt.Errorf("mdns browse: %w", err)
	}

	var devices []Device
	for addr := range candidates {
		if ctx.Err() != nil {
			break
		}
		if d := identify(ctx, s.Client, addr); d != nil {
			devices = append(devices, *d)
		}
	}

	return devices, ctx.Err()
}

// candidateAddress extracts a probe-worthy address from an mDNS entry,
// filtering out services that cannot be an AxeOS device.
func candidateAddress(entry *zeroconf.ServiceEntry) (string, bool) {
	if entry.HostName == "" || !bitaxePattern.MatchString(entry.HostName) {
		return "", false
	}

	var host string
	if len(entry.AddrIPv4) > 0 {
		host = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		host = entry.AddrIPv6[0].String()
	}
	if host == "" {
		return "", false
	}

	return hostAddress(host, entry.Port), true
}
