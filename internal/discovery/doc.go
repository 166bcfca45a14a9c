// Package discovery locates AxeOS devices on the local network.
//
// Two sources are provided behind a common interface. The mDNS source
// browses "_http._tcp" advertisements and keeps hosts whose names look like
// Bitaxe devices. The subnet source sweeps a CIDR block for open HTTP ports.
// Both then ask each candidate for its system info; only hosts that answer
// like an AxeOS device are reported, so a NAS or printer with port 80 open
// never ends up in an update run.
//
// mDNS discovery needs multicast to work between the updater and the
// devices (same L2 segment, UDP port 5353 not filtered). The subnet sweep
// has no such requirement and is the fallback on networks that block
// multicast.
package discovery
